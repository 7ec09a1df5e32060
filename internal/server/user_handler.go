package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"injuryshield/internal/dao"
	"injuryshield/internal/model"
	"injuryshield/internal/version"
)

const userKey = "user"

var errBadCredentials = errors.New("invalid username or password")

type TokenClaims struct {
	jwt.RegisteredClaims
	UserId int `json:"user_id"`
}

func tokenFromRequest(c *gin.Context) string {
	if tokenStr := c.Query("token"); tokenStr != "" {
		return tokenStr
	}
	if tokenStr, _ := c.Cookie("token"); tokenStr != "" {
		return tokenStr
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return auth[7:]
	}
	return ""
}

func userFromJwt(tokenStr, jwtSecret string) (*model.User, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return model.GetUserById(claims.UserId)
}

// TrySetUserToContext resolves the caller from a session JWT or an "sk-"
// access token. Anonymous requests pass through untouched.
func TrySetUserToContext(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.Next()
			return
		}

		var user *model.User
		var err error
		if strings.HasPrefix(tokenStr, "sk-") {
			user, err = model.GetUserByToken(tokenStr)
		} else {
			user, err = userFromJwt(tokenStr, jwtSecret)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		} else if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid user",
			})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func NeedAuth(needAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(userKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		user := u.(*model.User)
		if needAdmin && !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin permission required",
			})
			return
		}
		c.Next()
	}
}

// @Summary Login
// @Description Exchange username and password for a session token
// @Tags user
// @Accept json
// @Produce json
// @Param request body dao.LoginRequest true "credentials"
// @Success 200 {object} dao.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/login [post]
func (s *Server) handleLogin(c *gin.Context) {
	var req dao.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	user, err := model.GetUserByUsername(req.Username)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		s.writeError(c, http.StatusUnauthorized, errBadCredentials)
		return
	}

	token, err := genJwtToken(user, s.conf.JwtSecret)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	resp := dao.LoginResponse{
		Token: token,
		User:  dao.ToUserSpec(user),
	}
	c.SetCookie("token", token, 7*24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, resp)
}

func genJwtToken(user *model.User, jwtSecret string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserId: user.Id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    version.APP,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// @Summary Logout
// @Tags user
// @Success 200
// @Router /api/v1/logout [post]
func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{})
}

// @Summary Current user
// @Tags user
// @Produce json
// @Success 200 {object} dao.UserSpec
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/settings/profile [get]
func (s *Server) handleGetUserProfile(c *gin.Context) {
	user := c.MustGet(userKey).(*model.User)
	c.JSON(http.StatusOK, dao.ToUserSpec(user))
}

// @Summary List users
// @Tags admin
// @Produce json
// @Param start query int false "offset"
// @Param limit query int false "page size"
// @Success 200 {object} dao.ListUsersResponse
// @Router /api/v1/admin/users [get]
func (s *Server) handleAdminListUsers(c *gin.Context) {
	var req dao.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Start < 0 {
		req.Start = 0
	}

	total, err := model.CountUsers()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	users, err := model.GetUsers(req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	resp := dao.ListUsersResponse{
		Total: total,
		Items: make([]dao.UserSpec, 0, len(users)),
	}
	for _, u := range users {
		resp.Items = append(resp.Items, dao.ToUserSpec(u))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dao.CreateUserRequest true "new user"
// @Success 200 {object} dao.CreateUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/users [post]
func (s *Server) handleAdminCreateUsers(c *gin.Context) {
	var req dao.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	existing, err := model.GetUserByUsername(req.Username)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if existing != nil {
		s.writeError(c, http.StatusConflict, fmt.Errorf("user %s already exists", req.Username))
		return
	}

	user, err := req.ToUserModel()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	if err := model.CreateUser(user); err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, dao.CreateUserResponse{
		Id: user.Id,
	})
}

// @Summary Delete user
// @Tags admin
// @Produce json
// @Param user_id path int true "user id"
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/user/{user_id} [delete]
func (s *Server) handleAdminDeleteUser(c *gin.Context) {
	userId, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	user, err := model.GetUserById(userId)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if user == nil {
		s.writeError(c, http.StatusNotFound, fmt.Errorf("user %d not found", userId))
		return
	}

	if err := model.DeleteUser(user.Id); err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
