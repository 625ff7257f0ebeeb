package state

import "strings"

// Auth 顧客登入狀態
type Auth struct {
	CustomerID uint   `json:"customerId,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Token      string `json:"token,omitempty"`
	CodeSent   bool   `json:"codeSent"`
}

func (a Auth) SetPhone(phone string) Auth {
	a.Phone = strings.TrimSpace(phone)
	return a
}

func (a Auth) SetCodeSent(sent bool) Auth {
	a.CodeSent = sent
	return a
}

// SetCustomer 驗證成功後保存顧客ID與Token
func (a Auth) SetCustomer(customerID uint, token string) Auth {
	a.CustomerID = customerID
	a.Token = token
	return a
}

func (a Auth) LoggedIn() bool {
	return a.CustomerID != 0 && a.Token != ""
}

func (a Auth) Reset() Auth {
	return Auth{}
}
