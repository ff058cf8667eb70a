package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// AccessTokenClaims is the typed claim set carried by Karavan access tokens.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"uid"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input to MintAccessToken.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.ActorRole
	JTI    string
}
