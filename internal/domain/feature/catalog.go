// Package feature turns loosely typed transaction records into validated
// feature sets and fixed-order numeric vectors.
package feature

// RequiredField must be present and numeric on every record.
const RequiredField = "amount"

// NumericFields are optional float fields, in validation order.
var NumericFields = []string{
	"account_age_days",
	"user_age",
	"average_transaction_amount",
	"historical_fraud_count",
	"transactions_last_1h",
	"transactions_last_24h",
	"amount_last_24h",
	"unique_merchants_last_24h",
	"unique_countries_last_7d",
	"country_risk_score",
	"merchant_risk_score",
	"device_risk_score",
	"ip_reputation_score",
	"hour_of_day",
	"day_of_week",
}

// BooleanFields are optional 0/1 flags.
var BooleanFields = []string{
	"kyc_verified",
	"proxy_vpn_flag",
	"blacklist_match_flag",
	"billing_shipping_mismatch",
	"country_mismatch",
	"new_device_for_user",
	"new_location_for_user",
	"is_weekend",
	"is_holiday",
}

// CategoricalFields are optional string fields.
var CategoricalFields = []string{
	"currency",
	"transaction_type",
	"channel",
	"country",
	"city",
	"merchant_id",
	"device_id",
	"browser_fingerprint",
}

// IdentifierFields are the categorical fields the metadata encoder hashes.
var IdentifierFields = []string{
	"merchant_id",
	"device_id",
	"browser_fingerprint",
}

// DefaultOrder is the slot layout of the hash-encoded vector. The one-hot
// style names (currency_USD, ...) are never Set keys, so they encode as 0.0
// in the hash path and only light up under metadata encoding.
//
// It holds 41 names, the layout models are trained against, even where the
// input vector is described as 39 slots.
var DefaultOrder = []string{
	"amount",
	"currency_USD",
	"currency_EUR",
	"currency_INR",
	"transaction_type_POS",
	"transaction_type_ONLINE",
	"transaction_type_TRANSFER",
	"channel_WEB",
	"channel_MOBILE",
	"channel_ATM",
	"country_US",
	"country_IN",
	"city_New York",
	"city_Mumbai",
	"account_age_days",
	"user_age",
	"kyc_verified",
	"average_transaction_amount",
	"historical_fraud_count",
	"transactions_last_1h",
	"transactions_last_24h",
	"amount_last_24h",
	"unique_merchants_last_24h",
	"unique_countries_last_7d",
	"merchant_id",
	"device_id",
	"browser_fingerprint",
	"proxy_vpn_flag",
	"country_risk_score",
	"merchant_risk_score",
	"device_risk_score",
	"ip_reputation_score",
	"blacklist_match_flag",
	"hour_of_day",
	"day_of_week",
	"is_weekend",
	"is_holiday",
	"billing_shipping_mismatch",
	"country_mismatch",
	"new_device_for_user",
	"new_location_for_user",
}

// Kind classifies a catalog field.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNumeric
	KindBoolean
	KindCategorical
)

var kinds = func() map[string]Kind {
	m := make(map[string]Kind, 1+len(NumericFields)+len(BooleanFields)+len(CategoricalFields))
	m[RequiredField] = KindNumeric
	for _, f := range NumericFields {
		m[f] = KindNumeric
	}
	for _, f := range BooleanFields {
		m[f] = KindBoolean
	}
	for _, f := range CategoricalFields {
		m[f] = KindCategorical
	}
	return m
}()

// KindOf reports the catalog kind of a field name.
func KindOf(name string) Kind {
	return kinds[name]
}

func isIdentifier(name string) bool {
	for _, f := range IdentifierFields {
		if f == name {
			return true
		}
	}
	return false
}
