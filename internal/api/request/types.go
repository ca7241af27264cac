package request

// ConnectRequest is the body a userdata server posts once a player has
// logged in through a link
type ConnectRequest struct {
	Name     string  `json:"name"`
	Managed  *string `json:"managed"`
	Language string  `json:"language"`
}
