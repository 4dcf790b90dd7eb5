package testutil

import (
	"github.com/google/uuid"
)

// Fixed UUIDs for deterministic testing
var (
	TestUserID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestUserID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// TransactionsCSV is a three-row upload whose second row lacks an amount.
const TransactionsCSV = "amount,transactions_last_1h,country_risk_score,blacklist_match_flag,currency,country\n" +
	"150000,0,0,0,usd,us\n" +
	",3,0.1,0,eur,in\n" +
	"200000,60,0.8,true,usd,us\n"
