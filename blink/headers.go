package blink

import "net/http"

// ActionVersion is the Solana Actions protocol version this server speaks.
const ActionVersion = "2.4"

const (
	HeaderActionVersion = "X-Action-Version"
	HeaderBlockchainIDs = "X-Blockchain-Ids"
	HeaderRequestID     = "X-Request-ID"
)

// actionsCORSHeaders mirrors ACTIONS_CORS_HEADERS of the Actions SDK.
var actionsCORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":   "*",
	"Access-Control-Allow-Methods":  "GET,POST,PUT,OPTIONS",
	"Access-Control-Allow-Headers":  "Content-Type, Authorization, Content-Encoding, Accept-Encoding, X-Accept-Action-Version, X-Accept-Blockchain-Ids",
	"Access-Control-Expose-Headers": "X-Action-Version, X-Blockchain-Ids",
}

// SetActionHeaders writes the CORS, version and chain headers every action
// response carries.
func SetActionHeaders(h http.Header, blockchainID string) {
	for k, v := range actionsCORSHeaders {
		h.Set(k, v)
	}
	h.Set(HeaderActionVersion, ActionVersion)
	h.Set(HeaderBlockchainIDs, blockchainID)
}
