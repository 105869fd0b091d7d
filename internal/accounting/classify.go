package accounting

import (
	"strings"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/model"
)

// Classifier tags tickers without touching the network.
type Classifier struct {
	reportingCurrency string
	cashCodes         map[string]struct{}
	cryptoSuffixes    []string
	cryptoPlatforms   map[string]struct{}
}

func NewClassifier(cfg config.Portfolio) Classifier {
	c := Classifier{
		reportingCurrency: strings.ToUpper(cfg.ReportingCurrency),
		cashCodes:         make(map[string]struct{}, len(cfg.CashCodes)+1),
		cryptoPlatforms:   make(map[string]struct{}, len(cfg.CryptoPlatforms)),
	}
	c.cashCodes[c.reportingCurrency] = struct{}{}
	for _, code := range cfg.CashCodes {
		c.cashCodes[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	for _, suffix := range cfg.CryptoSuffixes {
		c.cryptoSuffixes = append(c.cryptoSuffixes, strings.ToUpper(strings.TrimSpace(suffix)))
	}
	for _, platform := range cfg.CryptoPlatforms {
		c.cryptoPlatforms[strings.ToLower(strings.TrimSpace(platform))] = struct{}{}
	}
	return c
}

func (c Classifier) ReportingCurrency() string {
	return c.reportingCurrency
}

func (c Classifier) IsCash(ticker string) bool {
	_, ok := c.cashCodes[strings.ToUpper(ticker)]
	return ok
}

func (c Classifier) HasCryptoSuffix(ticker string) bool {
	t := strings.ToUpper(ticker)
	for _, suffix := range c.cryptoSuffixes {
		if strings.HasSuffix(t, suffix) {
			return true
		}
	}
	return false
}

// Category applies, in order: crypto platform, crypto quote suffix, cash code, stock.
func (c Classifier) Category(platform, ticker string) model.Category {
	if _, ok := c.cryptoPlatforms[strings.ToLower(platform)]; ok {
		return model.CategoryCrypto
	}
	if c.HasCryptoSuffix(ticker) {
		return model.CategoryCrypto
	}
	if c.IsCash(ticker) {
		return model.CategoryCash
	}
	return model.CategoryStock
}

// StaticSector returns the sector for tickers that never need a gateway lookup.
func (c Classifier) StaticSector(ticker string) (string, bool) {
	if c.IsCash(ticker) {
		return model.SectorCash, true
	}
	if c.HasCryptoSuffix(ticker) {
		return model.SectorCrypto, true
	}
	return "", false
}
