package domain

// Credentials는 프로세스 시작 시 한 번 로드되는 API 자격 증명입니다
type Credentials struct {
	APIKey    string
	APISecret string
}

// Balance는 계정 잔고 정보를 표현합니다
type Balance struct {
	AccountType           string        `json:"accountType"`
	TotalEquity           string        `json:"totalEquity"`
	TotalWalletBalance    string        `json:"totalWalletBalance"`
	TotalAvailableBalance string        `json:"totalAvailableBalance"`
	Coins                 []CoinBalance `json:"coin"`
}

// CoinBalance는 코인별 잔고입니다
type CoinBalance struct {
	Coin                string `json:"coin"`
	Equity              string `json:"equity"`
	WalletBalance       string `json:"walletBalance"`
	AvailableToWithdraw string `json:"availableToWithdraw"`
	UnrealisedPnl       string `json:"unrealisedPnl"`
	CumRealisedPnl      string `json:"cumRealisedPnl"`
}
