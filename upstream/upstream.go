// Package upstream talks to the third-party chat-completion API.
package upstream

import (
	"github.com/sirupsen/logrus"

	"llmrelay/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
