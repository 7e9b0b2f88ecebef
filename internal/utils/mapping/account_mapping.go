package mapping

import (
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		Code:              d.Code,
		Name:              d.Name,
		AccountType:       string(d.AccountType),
		NormalBalanceSide: string(d.NormalBalanceSide),
		ParentCode:        toNullString(d.ParentCode),
		IsHeader:          d.IsHeader,
		IsActive:          d.IsActive,
		CarriesShu:        d.CarriesShu,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:         m.AccountID,
		Code:              m.Code,
		Name:              m.Name,
		AccountType:       domain.AccountType(m.AccountType),
		NormalBalanceSide: domain.BalanceSide(m.NormalBalanceSide),
		ParentCode:        fromNullString(m.ParentCode),
		IsHeader:          m.IsHeader,
		IsActive:          m.IsActive,
		CarriesShu:        m.CarriesShu,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
