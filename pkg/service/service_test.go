package service

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/config"
	"github.com/tgoo/authadm/pkg/transport"
)

// staticStorage is a fixed-token session storage for transport wiring.
type staticStorage struct {
	token string
}

func (s *staticStorage) Token() string { return s.token }
func (s *staticStorage) Clear()        { s.token = "" }

type noopRedirector struct{}

func (noopRedirector) RedirectToLogin() {}

func newTestTransport(serverURL string) *transport.Client {
	return transport.NewClient(
		logrus.New(),
		&config.API{
			BaseURL: serverURL,
			Timeout: 5 * time.Second,
		},
		&staticStorage{token: "test-token"},
		transport.NotifierFunc(func(string) {}),
		noopRedirector{},
	)
}
