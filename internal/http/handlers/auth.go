package handlers

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"todoapi/internal/auth"
	"todoapi/internal/domain"
	"todoapi/internal/http/respond"
	"todoapi/internal/repositories"
)

// invalidLogin is shared by the unknown-email and wrong-password paths so
// the two are indistinguishable to a caller probing for accounts.
var invalidLogin = domain.AppError{
	Msg:    "Invalid email or password",
	Status: http.StatusUnauthorized,
	Code:   "InvalidCredential",
}

type AuthHandler struct {
	Users    repositories.UserRepository
	Secret   []byte
	TokenTTL time.Duration
	Em       respond.Emitter
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// POST /api/v1/users/signup
func (h AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, h.Em, &req) {
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.PasswordConfirm == "" {
		h.Em.Error(c, domain.ValidationError{Msg: "Please provide email, name, password, and passwordConfirm"})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		h.Em.Error(c, domain.ValidationError{Field: "email", Msg: "Please provide a valid email", Err: err})
		return
	}
	if len(req.Password) < 8 {
		h.Em.Error(c, domain.ValidationError{Field: "password", Msg: "Password must be at least 8 characters long"})
		return
	}
	if req.Password != req.PasswordConfirm {
		h.Em.Error(c, domain.ValidationError{Field: "passwordConfirm", Msg: "Passwords must match"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req.Name, req.Email, string(hash))
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	token, err := auth.Sign(user.ID, h.Secret, h.TokenTTL)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user.ToPublic()},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/users/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, h.Em, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		h.Em.Error(c, domain.ValidationError{Msg: "Please provide email and password"})
		return
	}

	user, err := h.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			h.Em.Error(c, invalidLogin)
			return
		}
		h.Em.Error(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.Em.Error(c, invalidLogin)
		return
	}

	token, err := auth.Sign(user.ID, h.Secret, h.TokenTTL)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user.ToPublic()},
	})
}

// POST /api/v1/users/logout
//
// Tokens are stateless, so there is nothing to revoke server-side; the route
// exists so clients have a uniform logout call.
func (h AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GET /api/v1/users/me
func (h AuthHandler) Me(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		h.Em.Error(c, err)
		return
	}

	h.Em.Data(c, http.StatusOK, gin.H{"user": user.ToPublic()})
}
