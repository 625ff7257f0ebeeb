package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "restaurant-backend"

var ErrInvalidToken = errors.New("invalid token")

type customerClaims struct {
	CustomerID uint `json:"customerID"`
	jwt.RegisteredClaims
}

// Signer 簽發與驗證顧客Token，Token內只帶顧客ID
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// 生成JWT Token
func (s *Signer) GenerateToken(customerID uint) (string, error) {
	now := s.now()
	claims := customerClaims{
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprint(customerID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// 驗證JWT Token並回傳顧客ID
func (s *Signer) VerifyToken(tokenString string) (uint, error) {
	var claims customerClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.CustomerID == 0 {
		return 0, ErrInvalidToken
	}

	return claims.CustomerID, nil
}
