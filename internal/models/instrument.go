package models

// Instrument identifies a tradable pair and which data source feeds it.
type Instrument struct {
	Symbol string `mapstructure:"symbol" json:"symbol" validate:"required"`
	Crypto bool   `mapstructure:"crypto" json:"crypto"`
}
