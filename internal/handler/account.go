package handler

import (
	"time"

	"podia/internal/geo"
	"podia/internal/model"
)

// accountView is the JSON shape of an account. The password hash never
// appears here.
type accountView struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Phone     string     `json:"phone,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	Contacts  string     `json:"contacts,omitempty"`
	Instagram string     `json:"instagram,omitempty"`
	Facebook  string     `json:"facebook,omitempty"`
	About     string     `json:"about,omitempty"`
	Location  *geo.Point `json:"location,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toAccountView(a model.Account) accountView {
	view := accountView{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		Phone:     a.Phone,
		Avatar:    a.AvatarRef,
		Contacts:  a.Contacts,
		Instagram: a.Instagram,
		Facebook:  a.Facebook,
		About:     a.About,
		CreatedAt: a.CreatedAt,
	}
	if p, ok := a.Location(); ok {
		view.Location = &p
	}
	return view
}
