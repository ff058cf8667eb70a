package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// accountView is the transport shape for user accounts; it never carries the
// credential hash.
type accountView struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         enums.ActorRole    `json:"role"`
	TraderStatus enums.TraderStatus `json:"trader_status"`
	CompanyName  *string            `json:"company_name,omitempty"`
	GSTNumber    *string            `json:"gst_number,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func newAccountView(user *models.User) *accountView {
	if user == nil {
		return nil
	}
	return &accountView{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		TraderStatus: user.TraderStatus,
		CompanyName:  user.CompanyName,
		GSTNumber:    user.GSTNumber,
		CreatedAt:    user.CreatedAt,
	}
}

func newAccountViews(users []models.User) []*accountView {
	views := make([]*accountView, 0, len(users))
	for i := range users {
		views = append(views, newAccountView(&users[i]))
	}
	return views
}
