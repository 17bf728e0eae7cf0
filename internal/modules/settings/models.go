package settings

// Well-known setting keys
const (
	KeyLastExcelImport  = "last_excel_import"
	KeyLastRatesUpdate  = "last_rates_update"
	KeyLastPricesUpdate = "last_prices_update"
	KeyBaseCurrency     = "base_currency"
	KeyMaxQuoteAgeHours = "max_quote_age_hours"
	KeyAlphaVantageKey  = "alpha_vantage_api_key"
	KeyGeminiKey        = "gemini_api_key"
)

// SettingDefaults holds default values for settings that have one
var SettingDefaults = map[string]string{
	KeyBaseCurrency:     "AUD",
	KeyMaxQuoteAgeHours: "24",
}
