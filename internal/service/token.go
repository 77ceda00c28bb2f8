package service

import "github.com/WebUp-555/ecommerce-api/internal/models"

type TokenService interface {
	CreateToken(payload *models.TokenPayload) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}
