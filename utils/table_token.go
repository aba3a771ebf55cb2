package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TableClaims 扫码点餐令牌，绑定店铺和桌号
type TableClaims struct {
	ShopID  string `json:"shop_id"`
	TableNo string `json:"table_no"`
	jwt.RegisteredClaims
}

// TableTokens signs and verifies the tokens printed into table QR codes.
// A token stays valid until the end of the UTC day it was issued.
type TableTokens struct {
	secret []byte
	now    func() time.Time
}

func NewTableTokens(secret string) *TableTokens {
	return &TableTokens{secret: []byte(secret), now: time.Now}
}

func (t *TableTokens) Issue(shopID, tableNo string) (string, time.Time, error) {
	if shopID == "" || tableNo == "" {
		return "", time.Time{}, errors.New("shop id and table number are required")
	}
	now := t.now().UTC()
	expires := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	claims := TableClaims{
		ShopID:  shopID,
		TableNo: tableNo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shopID + "/" + tableNo,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign table token: %w", err)
	}
	return signed, expires, nil
}

func (t *TableTokens) Parse(tokenString string) (*TableClaims, error) {
	claims := &TableClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ShopID == "" || claims.TableNo == "" {
		return nil, errors.New("invalid table token")
	}
	return claims, nil
}
