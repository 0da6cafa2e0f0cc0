package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/importer"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	ownServer    bool
	response     *http.Response
	responseBody []byte
	authToken    string
	// saved holds values captured from responses, like "{groupId}".
	saved        map[string]string
	importResult *importer.Result
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:     tc,
		server: tc.Server,
		saved:  make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.ownServer {
			s.server.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a flagkeep server is running$`, s.aServerIsRunning)
	sc.Step(`^a flagkeep server is running with flags "([^"]*)"$`, s.aServerIsRunningWithFlags)
	sc.Step(`^a user "([^"]*)" with password "([^"]*)" and root role "([^"]*)"$`, s.aUserWithRootRole)
	sc.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, s.iAmLoggedInAs)

	// Request steps
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequest)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with:$`, s.iSendARequestWith)
	sc.Step(`^I save the JSON value "([^"]*)" as "([^"]*)"$`, s.iSaveTheJSONValue)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the JSON value "([^"]*)" should be "([^"]*)"$`, s.theJSONValueShouldBe)
	sc.Step(`^the JSON value "([^"]*)" should have (\d+) items?$`, s.theJSONValueShouldHaveItems)
	sc.Step(`^the error name should be "([^"]*)"$`, s.theErrorNameShouldBe)

	s.registerAuthSteps(sc)
	s.registerImportSteps(sc)
}

// Background steps

func (s *StepsContext) aServerIsRunning() error {
	return nil
}

func (s *StepsContext) aServerIsRunningWithFlags(flags string) error {
	instance, err := StartServer(s.tc, ServerConfig{Flags: strings.Split(flags, ",")})
	if err != nil {
		return err
	}
	s.server = instance
	s.ownServer = true
	return nil
}

func (s *StepsContext) aUserWithRootRole(username, password, role string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.tc.DB.Exec(`
		INSERT INTO users (username, password_hash, root_role_id)
		SELECT ?, ?, id FROM roles WHERE name = ?
	`, username, hash, role).Error
}

func (s *StepsContext) iAmLoggedInAs(username, password string) error {
	if err := s.login(username, password); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with %d: %s", s.response.StatusCode, s.responseBody)
	}
	token, err := s.jsonValue("token")
	if err != nil {
		return err
	}
	s.authToken = fmt.Sprint(token)
	return nil
}

func (s *StepsContext) login(username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return s.do(http.MethodPost, "/auth/simple/login", body)
}

// Request steps

func (s *StepsContext) iSendARequest(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendARequestWith(method, path string, body *godog.DocString) error {
	return s.do(method, path, []byte(s.expand(body.Content)))
}

func (s *StepsContext) iSaveTheJSONValue(path, name string) error {
	v, err := s.jsonValue(path)
	if err != nil {
		return err
	}
	s.saved[name] = fmt.Sprint(v)
	return nil
}

func (s *StepsContext) do(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.ServerURL+s.expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// expand replaces "{name}" with saved values.
func (s *StepsContext) expand(text string) string {
	for name, value := range s.saved {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theJSONValueShouldBe(path, expected string) error {
	v, err := s.jsonValue(path)
	if err != nil {
		return err
	}
	if actual := fmt.Sprint(v); actual != s.expand(expected) {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, actual)
	}
	return nil
}

func (s *StepsContext) theJSONValueShouldHaveItems(path string, n int) error {
	v, err := s.jsonValue(path)
	if err != nil {
		return err
	}
	items, ok := v.([]interface{})
	if !ok {
		return fmt.Errorf("%s is not a list: %v", path, v)
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items at %s, got %d", n, path, len(items))
	}
	return nil
}

func (s *StepsContext) theErrorNameShouldBe(name string) error {
	return s.theJSONValueShouldBe("name", name)
}

// jsonValue looks up a dotted path like "groups.0.name" in the last
// response body.
func (s *StepsContext) jsonValue(path string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(s.responseBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w: %s", err, s.responseBody)
	}
	if path == "" || path == "." {
		return doc, nil
	}

	current := doc
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			v, ok := node[key]
			if !ok {
				return nil, fmt.Errorf("no %q in %s", key, path)
			}
			current = v
		case []interface{}:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("bad index %q in %s", key, path)
			}
			current = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %s at %q", path, key)
		}
	}
	return current, nil
}
