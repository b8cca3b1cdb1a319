package api

import "github.com/gin-gonic/gin"

const identityKey = "identity"

// Identity - аутентифицированный пользователь, проставленный middleware провайдера идентификации
type Identity struct {
	UserID  string
	OrgID   string
	OrgRole string
}

// SetIdentity сохраняет пользователя в контексте запроса
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom возвращает пользователя запроса или nil
func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*Identity)
	return identity
}

// RequireIdentity проверяет, что запрос пришел от вошедшего пользователя
func (r *Resources) RequireIdentity() error {
	if r.Identity == nil || r.Identity.UserID == "" {
		return Unauthorized("Unauthorized").WithMessage("Sign in to perform this action")
	}
	return nil
}

// RequireStaff пропускает только участников организации персонала.
// Пустой идентификатор организации персонала не пропускает никого.
func (r *Resources) RequireStaff() error {
	if err := r.RequireIdentity(); err != nil {
		return err
	}
	if r.staffOrgID == "" || r.Identity.OrgID != r.staffOrgID {
		return Unauthorized("Unauthorized").WithMessage("Only staff members can perform this action")
	}
	return nil
}
