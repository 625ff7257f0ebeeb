package state

import "strings"

type Admin struct {
	Secret string `json:"secret,omitempty"`
}

// SetSecret 去除前後空白，空字串等同清除
func (a Admin) SetSecret(secret string) Admin {
	a.Secret = strings.TrimSpace(secret)
	return a
}

func (a Admin) Clear() Admin {
	return Admin{}
}

func (a Admin) HasSecret() bool {
	return a.Secret != ""
}
