package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/auth"
	"github.com/LENAX/quant-board/pkg/api/dto"
)

// AuthHandler 登录处理器
type AuthHandler struct {
	secret   []byte
	tokenTTL time.Duration
	user     string
	password string
}

// NewAuthHandler 创建AuthHandler
func NewAuthHandler(secret []byte, tokenTTL time.Duration, user, password string) *AuthHandler {
	return &AuthHandler{
		secret:   secret,
		tokenTTL: tokenTTL,
		user:     user,
		password: password,
	}
}

// Login 登录签发令牌
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(401, "用户名或口令错误"))
		return
	}

	token, expiresAt, err := auth.Generate(h.secret, req.Username, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "签发令牌失败"))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}))
}
