package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"Restaurant/models"
	"Restaurant/verification"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VerificationCode 目前沒有接簡訊服務，所有手機共用同一組驗證碼
const VerificationCode = "1234"

type CustomerService struct {
	db     *gorm.DB
	sender verification.Sender
	log    *logrus.Logger
}

func NewCustomerService(db *gorm.DB, sender verification.Sender, log *logrus.Logger) *CustomerService {
	return &CustomerService{db: db, sender: sender, log: log}
}

// normalizePhone 去除前後空白後再檢查長度
func normalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if n := utf8.RuneCountInString(phone); n < 10 || n > 32 {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// RequestCode 將驗證碼交給發送端，回傳前即視為已送達
func (s *CustomerService) RequestCode(ctx context.Context, phone string) error {
	phone, err := normalizePhone(phone)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, phone, VerificationCode); err != nil {
		return Store("failed to deliver verification code", err)
	}
	s.log.WithField("phone", phone).Info("已發送驗證碼")
	return nil
}

// Verify 驗證碼正確時回傳該手機的顧客，不存在則建立
func (s *CustomerService) Verify(ctx context.Context, phone, code string) (models.Customer, error) {
	if code != VerificationCode {
		return models.Customer{}, ErrInvalidCode
	}
	phone, err := normalizePhone(phone)
	if err != nil {
		return models.Customer{}, err
	}

	customer, err := s.findByPhone(ctx, phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Customer{}, Store("failed to load customer", err)
	}

	customer = models.Customer{Phone: phone}
	err = s.db.WithContext(ctx).Create(&customer).Error
	if err == nil {
		return customer, nil
	}

	//同一支手機同時驗證時，另一個請求可能已經建立顧客
	if isDuplicateKey(err) {
		customer, err = s.findByPhone(ctx, phone)
		if err == nil {
			return customer, nil
		}
	}
	return models.Customer{}, Store("failed to create customer", err)
}

func (s *CustomerService) findByPhone(ctx context.Context, phone string) (models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error
	return customer, err
}
