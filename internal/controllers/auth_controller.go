package controllers

import (
	"net/http"
	"time"

	"github.com/carebridge/backend/internal/config"
	"github.com/carebridge/backend/internal/logger"
	"github.com/carebridge/backend/internal/middleware"
	"github.com/carebridge/backend/internal/models"
	"github.com/carebridge/backend/internal/services"
	"github.com/carebridge/backend/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	db     *gorm.DB
	mailer *services.Mailer
}

func NewAuthController(db *gorm.DB, mailer *services.Mailer) *AuthController {
	return &AuthController{db: db, mailer: mailer}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	CompanyName string `json:"companyName"`
	PostalCode  string `json:"postalCode"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ferr := validation.ValidatePassword(req.Password); ferr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Message, "field": ferr.Field})
		return
	}
	profile := validation.ProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		CompanyName: req.CompanyName,
		PostalCode:  req.PostalCode,
	}
	if errs := profile.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message, "field": errs[0].Field})
		return
	}

	var existingUser models.User
	if err := ac.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := ac.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Profile and notification settings ride along with the account. No
	// role row: new identities have no role until a superadmin assigns one.
	row := models.Profile{ID: user.ID, Email: &user.Email}
	if profile.FullName != "" {
		row.FullName = &profile.FullName
	}
	if profile.PhoneNumber != "" {
		row.PhoneNumber = &profile.PhoneNumber
	}
	if profile.CompanyName != "" {
		row.CompanyName = &profile.CompanyName
	}
	if profile.PostalCode != "" {
		row.PostalCode = &profile.PostalCode
	}
	if err := ac.db.Create(&row).Error; err != nil {
		logger.WithError(err, "auth_controller").Error("profile creation failed")
	}
	if err := ac.db.Create(&models.NotificationSettings{UserID: user.ID}).Error; err != nil {
		logger.WithError(err, "auth_controller").Error("notification settings creation failed")
	}

	token, expiresAt, err := ac.generateToken(&user, middleware.ScopeSession, config.Get().Auth.TokenExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Success:   true,
		Message:   "Registration successful",
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	cfg := config.Get()
	if cfg.Auth.MFARequired {
		// Password alone is not a session: hand out a pending token good
		// only for the enrollment or challenge endpoints.
		token, expiresAt, err := ac.generateToken(&user, middleware.ScopeMFAPending, cfg.Auth.PendingTokenExpiry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"mfaRequired":           true,
			"mfaEnrollmentRequired": user.TOTPSecret == nil,
			"token":                 token,
			"expiresAt":             expiresAt,
		})
		return
	}

	token, expiresAt, err := ac.generateToken(&user, middleware.ScopeSession, cfg.Auth.TokenExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	})
}

// MFAEnroll generates a TOTP key for the pending identity and returns the
// scannable shared secret.
func (ac *AuthController) MFAEnroll(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := ac.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "CareBridge",
		AccountName: user.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authenticator key"})
		return
	}

	secret := key.Secret()
	user.TOTPSecret = &secret
	if err := ac.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store authenticator key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":     secret,
		"otpauthUrl": key.URL(),
	})
}

type MFAVerifyRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// MFAVerify accepts the 6-digit code and upgrades the pending token to a
// full session.
func (ac *AuthController) MFAVerify(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req MFAVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.TOTPSecret == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authenticator not enrolled"})
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	token, expiresAt, err := ac.generateToken(&user, middleware.ScopeSession, config.Get().Auth.TokenExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := ac.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	token, expiresAt, err := ac.generateToken(&user, middleware.ScopeSession, config.Get().Auth.TokenExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ferr := validation.ValidatePassword(req.NewPassword); ferr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Message})
		return
	}

	var user models.User
	if err := ac.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user.Password = string(hashedPassword)
	if err := ac.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password changed successfully",
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword dispatches a reset email. The response is the same whether
// or not the address exists.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.db.Where("email = ?", req.Email).First(&user).Error; err == nil {
		token, _, err := ac.generateToken(&user, middleware.ScopeReset, config.Get().Auth.ResetTokenExpiry)
		if err == nil {
			if err := ac.mailer.SendPasswordReset(user.Email, token); err != nil {
				logger.WithError(err, "auth_controller").Error("reset email dispatch failed")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If that email exists, a reset link has been sent",
	})
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ferr := validation.ValidatePassword(req.NewPassword); ferr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Message})
		return
	}

	token, err := jwt.Parse(req.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Get().Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if scope, _ := claims["scope"].(string); scope != middleware.ScopeReset {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	userID, _ := claims["user_id"].(string)

	var user models.User
	if err := ac.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user.Password = string(hashedPassword)
	if err := ac.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully",
	})
}

func (ac *AuthController) generateToken(user *models.User, scope string, expiry time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(expiry)
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"scope":   scope,
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.Get().Auth.JWTSecret))
	return tokenString, expiresAt, err
}
