package turkov

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/victorjacobs/go-turkov/logging"
)

// BaseURL is the Turkov cloud endpoint.
const BaseURL = "https://turkovwifi.ru"

// Session talks to the Turkov cloud on behalf of one account. It keeps the
// access token fresh and owns the set of devices registered to the account.
type Session struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
	now        func() time.Time

	email    string
	password string

	mutex                 sync.Mutex
	accessToken           string
	accessTokenExpiresAt  time.Time
	refreshToken          string
	refreshTokenExpiresAt time.Time

	devices map[string]*Device
}

func NewSession(baseURL string, email string, password string) *Session {
	if baseURL == "" {
		baseURL = BaseURL
	}

	return &Session{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		log:        logging.WithComponent("turkov"),
		now:        time.Now,
		email:      email,
		password:   password,
		devices:    make(map[string]*Device),
	}
}

// SignIn performs a full email/password authentication and stores the
// returned token pair. The cloud hands out a refresh token as well, but its
// exchange endpoint is not public, so an expired access token always goes
// through here again.
func (s *Session) SignIn(ctx context.Context) error {
	s.log.Debug().Msg("Authenticating with email/password combo")

	var signIn signInResponse
	if err := s.request(ctx, http.MethodPost, "/user/signin", nil, signInRequest{
		UserEmail: s.email,
		Password:  s.password,
	}, &signIn); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	if signIn.AccessToken == "" || signIn.RefreshToken == "" {
		return fmt.Errorf("%w: server provided empty auth data", ErrAuthentication)
	}

	now := s.now()
	accessExpiresAt := time.Unix(signIn.AccessTokenExpiresAt, 0)
	refreshExpiresAt := time.Unix(signIn.RefreshTokenExpiresAt, 0)

	if accessExpiresAt.Before(now) {
		return fmt.Errorf("%w: server provided expired access token", ErrAuthentication)
	}
	if refreshExpiresAt.Before(now) {
		return fmt.Errorf("%w: server provided expired refresh token", ErrAuthentication)
	}

	s.mutex.Lock()
	s.accessToken = signIn.AccessToken
	s.accessTokenExpiresAt = accessExpiresAt
	s.refreshToken = signIn.RefreshToken
	s.refreshTokenExpiresAt = refreshExpiresAt
	s.mutex.Unlock()

	s.log.Info().Time("access_token_expires_at", accessExpiresAt).Msg("Authenticated")

	return nil
}

func (s *Session) accessTokenNeedsUpdate() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.accessToken == "" || !s.accessTokenExpiresAt.After(s.now())
}

func (s *Session) currentAccessToken() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.accessToken
}

// UpdateUserData fetches the account and reconciles the session's device map
// with the device list the cloud reports.
func (s *Session) UpdateUserData(ctx context.Context) error {
	s.log.Debug().Msg("Updating user information and list of devices")

	var user userResponse
	if err := s.authenticated(ctx, http.MethodGet, "/user", nil, nil, &user); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	leftover := make(map[string]struct{}, len(s.devices))
	for id := range s.devices {
		leftover[id] = struct{}{}
	}

	for _, record := range user.Devices {
		if record.ID == "" {
			s.log.Warn().Msg("Device record without ID, skipping")
			continue
		}

		device, ok := s.devices[record.ID]
		if !ok {
			s.log.Info().Str("device", hideID(record.ID)).Msg("Discovered new device")
			device = newCloudDevice(record.ID, s)
			s.devices[record.ID] = device
		} else {
			delete(leftover, record.ID)
		}

		device.Type = record.DeviceType
		device.Name = record.DeviceName
		device.SerialNumber = record.SerialNumber
		device.Pin = record.Pin
		device.FirmwareVersion = record.FirmwareVersion
	}

	for id := range leftover {
		s.log.Info().Str("device", hideID(id)).Msg("Discarding device no longer on account")
		delete(s.devices, id)
	}

	return nil
}

// Devices returns a snapshot of the devices known to the session.
func (s *Session) Devices() map[string]*Device {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	devices := make(map[string]*Device, len(s.devices))
	for id, device := range s.devices {
		devices[id] = device
	}

	return devices
}

// DeviceState fetches the raw state document for one device. The cloud
// returns an array of JSON-encoded strings of which only the last entry is
// the current state.
func (s *Session) DeviceState(ctx context.Context, deviceID string) (map[string]any, error) {
	s.log.Debug().Str("device", hideID(deviceID)).Msg("Fetching device state")

	var entries []json.RawMessage
	query := url.Values{"device": []string{deviceID + "_state"}}
	if err := s.authenticated(ctx, http.MethodGet, "/user/devices", query, nil, &entries); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("missing device data")
	}

	last := entries[len(entries)-1]

	// State documents are doubly encoded: the array entry is a string that
	// itself contains a JSON object.
	var encoded string
	if err := json.Unmarshal(last, &encoded); err == nil {
		last = []byte(encoded)
	}

	var state map[string]any
	if err := json.Unmarshal(last, &state); err != nil {
		return nil, fmt.Errorf("improper device data encoding: %w", err)
	}

	return state, nil
}

// SetDeviceValue writes a single key/value pair to the device via the cloud.
func (s *Session) SetDeviceValue(ctx context.Context, deviceID string, key string, value any) error {
	s.log.Debug().
		Str("device", hideID(deviceID)).
		Str("key", key).
		Interface("value", value).
		Msg("Sending value to device")

	var message messageResponse
	if err := s.authenticated(ctx, http.MethodPost, "/user/device/"+url.PathEscape(deviceID), nil, map[string]any{key: value}, &message); err != nil {
		return err
	}

	if message.Message != "success" {
		return fmt.Errorf("error calling setter: %v", message.Message)
	}

	return nil
}

// authenticated wraps request with access token upkeep: refresh the token
// up front when it is known to be stale, and retry exactly once when the
// server rejects a token that looked valid.
func (s *Session) authenticated(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	attempted := false
	if s.accessTokenNeedsUpdate() {
		s.log.Debug().Msg("Access token requires update before request")
		if err := s.SignIn(ctx); err != nil {
			return err
		}
		attempted = true
	}

	err := s.request(ctx, method, path, query, body, out)
	if errors.Is(err, ErrAuthentication) && !attempted {
		s.log.Debug().Msg("Re-authenticating because previous request failed authentication")
		if err = s.SignIn(ctx); err != nil {
			return err
		}
		err = s.request(ctx, method, path, query, body, out)
	}

	return err
}

func (s *Session) request(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		marshaled, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(marshaled)
	} else {
		reader = bytes.NewReader(nil)
	}

	requestURL := s.baseURL + path
	if len(query) != 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if token := s.currentAccessToken(); token != "" {
		request.Header.Set("x-access-token", token)
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
		var message messageResponse
		_ = json.NewDecoder(response.Body).Decode(&message)
		return fmt.Errorf("%w: %v", ErrAuthentication, nonEmpty(message.Message, response.Status))
	}

	if response.StatusCode >= 400 {
		var message messageResponse
		_ = json.NewDecoder(response.Body).Decode(&message)
		return fmt.Errorf("server returned %v: %v", response.Status, nonEmpty(message.Message, "<no message>"))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("server returned invalid response: %w", err)
	}

	return nil
}

func nonEmpty(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// hideID keeps full device ids out of the logs.
func hideID(id string) string {
	if len(id) <= 4 {
		return "*" + id
	}
	return "*" + id[len(id)-4:]
}
