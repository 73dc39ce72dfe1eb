package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/dto"
)

func (s *Suite) register(email, password, role string) (*dto.AuthResponse, []*http.Cookie) {
	reqBody := dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
		Role:      role,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Registration should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	return &authResp, resp.Cookies()
}

func (s *Suite) TestRegister_Success() {
	reqBody := dto.RegisterRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "test@example.com",
		Password:  "Password123",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	s.Require().NoError(err)

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("test@example.com", authResp.User.Email)
	s.Equal(domain.RoleStudent, authResp.User.Role)
	s.NotEmpty(authResp.User.ID)
	s.False(authResp.User.IsEmailVerified)

	cookies := resp.Cookies()
	s.NotEmpty(cookies, "Should have refresh token cookie")
}

func (s *Suite) TestRegister_TutorRole() {
	authResp, _ := s.register("tutor@example.com", "Password123", domain.RoleTutor)
	s.Equal(domain.RoleTutor, authResp.User.Role)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("duplicate@example.com", "Password123", "")

	reqBody := dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "Duplicate@Example.com",
		Password:  "Password123",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_InvalidEmail() {
	reqBody := dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "invalid-email",
		Password:  "Password123",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.NotEmpty(errResp.Fields)
}

func (s *Suite) TestRegister_ShortPassword() {
	reqBody := dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "test@example.com",
		Password:  "short",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_UnknownRole() {
	reqBody := dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "admin-wannabe@example.com",
		Password:  "Password123",
		Role:      "admin",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register("login@example.com", "Password123", "")

	loginReq := dto.LoginRequest{
		Email:    "login@example.com",
		Password: "Password123",
	}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	s.Require().NoError(err)

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.Equal("login@example.com", authResp.User.Email)

	cookies := resp.Cookies()
	s.NotEmpty(cookies, "Should have refresh token cookie")
}

func (s *Suite) TestLogin_InvalidCredentials() {
	loginReq := dto.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "wrongpassword",
	}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.register("wrongpass@example.com", "CorrectPassword123", "")

	loginReq := dto.LoginRequest{
		Email:    "wrongpass@example.com",
		Password: "WrongPassword123",
	}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	authResp, _ := s.register("getme@example.com", "Password123", "")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var user domain.PublicUser
	err = json.NewDecoder(resp.Body).Decode(&user)
	s.Require().NoError(err)

	s.NotEmpty(user.ID)
	s.Equal("getme@example.com", user.Email)
	s.Equal("Test", user.FirstName)
	s.NotEmpty(user.CreatedAt)
	s.False(user.IsEmailVerified)
}

func (s *Suite) TestGetMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_InvalidToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestUpdateProfile_Success() {
	authResp, _ := s.register("profile@example.com", "Password123", "")

	updateReq := dto.UpdateProfileRequest{
		FirstName: "Renamed",
		LastName:  "Person",
	}
	body, _ := json.Marshal(updateReq)

	req, _ := http.NewRequest("PUT", s.BaseURL+"/api/v1/auth/me", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var user domain.PublicUser
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	s.Equal("Renamed", user.FirstName)
	s.Equal("Person", user.LastName)
}

func (s *Suite) TestChangePassword_RevokesOldPassword() {
	authResp, _ := s.register("changepass@example.com", "OldPassword123", "")

	changeReq := dto.ChangePasswordRequest{
		CurrentPassword: "OldPassword123",
		NewPassword:     "NewPassword456",
	}
	body, _ := json.Marshal(changeReq)

	req, _ := http.NewRequest("PUT", s.BaseURL+"/api/v1/auth/password", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	loginWith := func(password string) int {
		loginReq := dto.LoginRequest{Email: "changepass@example.com", Password: password}
		b, _ := json.Marshal(loginReq)
		loginResp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(b))
		s.Require().NoError(err)
		defer loginResp.Body.Close()
		return loginResp.StatusCode
	}

	s.Equal(http.StatusUnauthorized, loginWith("OldPassword123"))
	s.Equal(http.StatusOK, loginWith("NewPassword456"))
}

func (s *Suite) TestLogout_Success() {
	authResp, cookies := s.register("logout@example.com", "Password123", "")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	json.NewDecoder(resp.Body).Decode(&successResp)
	s.Equal("Logged out successfully", successResp.Message)

	// The revoked refresh token must not mint new sessions
	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestLogout_NoToken() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_Success() {
	_, cookies := s.register("refresh@example.com", "Password123", "")
	s.Require().NotEmpty(cookies)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	s.Require().NoError(err)

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
}

func (s *Suite) TestRefresh_RotationInvalidatesOldToken() {
	_, cookies := s.register("rotation@example.com", "Password123", "")

	refresh := func(with []*http.Cookie) *http.Response {
		req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
		for _, cookie := range with {
			req.AddCookie(cookie)
		}
		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		return resp
	}

	first := refresh(cookies)
	defer first.Body.Close()
	s.Require().Equal(http.StatusOK, first.StatusCode)
	rotated := first.Cookies()
	s.Require().NotEmpty(rotated)

	// Replaying the consumed token fails
	replay := refresh(cookies)
	defer replay.Body.Close()
	s.Equal(http.StatusUnauthorized, replay.StatusCode)

	// The rotated token still works
	second := refresh(rotated)
	defer second.Body.Close()
	s.Equal(http.StatusOK, second.StatusCode)
}

func (s *Suite) TestRefresh_NoCookie() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestCompleteFlow() {
	authResp, cookies := s.register("complete@example.com", "Password123", "")
	accessToken := authResp.AccessToken

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	meResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	var newAuthResp dto.AuthResponse
	json.NewDecoder(refreshResp.Body).Decode(&newAuthResp)
	newAccessToken := newAuthResp.AccessToken

	logoutReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	logoutReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", newAccessToken))
	for _, cookie := range refreshResp.Cookies() {
		logoutReq.AddCookie(cookie)
	}
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	s.Require().NoError(err)
	defer logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	// Access tokens stay valid until expiry; only the refresh session is gone
	meReq2, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq2.Header.Set("Authorization", fmt.Sprintf("Bearer %s", newAccessToken))
	meResp2, err := http.DefaultClient.Do(meReq2)
	s.Require().NoError(err)
	defer meResp2.Body.Close()
	s.Equal(http.StatusOK, meResp2.StatusCode)
}
