package exchange

import "testing"

func TestSignMatchesKnownVectors(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		query  string
		want   string
	}{
		{
			// 交易所接口文档中的官方示例。
			"documented example",
			"NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j",
			"symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559",
			"c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71",
		},
		{
			"short query",
			"testsecret",
			"symbol=BTCUSDT&side=BUY",
			"29fc1d472b8d63ce3b6c8c58589f8b4ae0b7b907a42f0703ef6ac339d0ac970e",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newSigner(tc.secret).Sign(tc.query); got != tc.want {
				t.Errorf("Sign(%q) = %s, want %s", tc.query, got, tc.want)
			}
		})
	}
}

func TestSignIsByteSensitive(t *testing.T) {
	s := newSigner("testsecret")
	a := s.Sign("symbol=BTCUSDT&side=BUY")
	b := s.Sign("side=BUY&symbol=BTCUSDT")
	if a == b {
		t.Error("signatures should differ when parameter order differs")
	}
}
