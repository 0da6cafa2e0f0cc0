package integration

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"

	"github.com/flagkeep/flagkeep/pkg/auth"
)

func (s *StepsContext) registerAuthSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I am not logged in$`, s.iAmNotLoggedIn)
	sc.Step(`^I use an expired token for "([^"]*)"$`, s.iUseAnExpiredToken)
	sc.Step(`^I use a token for "([^"]*)" signed with "([^"]*)"$`, s.iUseATokenSignedWith)
}

func (s *StepsContext) iLogInAs(username, password string) error {
	return s.login(username, password)
}

func (s *StepsContext) iAmNotLoggedIn() error {
	s.authToken = ""
	return nil
}

func (s *StepsContext) iUseAnExpiredToken(username string) error {
	token, err := s.forgeToken(username, []byte(authSecret), time.Now().Add(-time.Hour))
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iUseATokenSignedWith(username, secret string) error {
	token, err := s.forgeToken(username, []byte(secret), time.Now().Add(time.Hour))
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) forgeToken(username string, secret []byte, expiresAt time.Time) (string, error) {
	var userID int
	if err := s.tc.DB.Raw(`SELECT id FROM users WHERE username = ?`, username).Scan(&userID).Error; err != nil {
		return "", err
	}
	if userID == 0 {
		return "", fmt.Errorf("user %q not found", username)
	}

	claims := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "flagkeep",
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
