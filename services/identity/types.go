package identity

import "fmt"

type sessionResponse struct {
	Kind         string `json:"kind"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

type providerError struct {
	ErrorInfo struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e providerError) Error() string {
	return fmt.Sprintf("%d: %s", e.ErrorInfo.Code, e.ErrorInfo.Message)
}
