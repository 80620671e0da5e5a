package manager

import (
	"github.com/sirupsen/logrus"

	"llmrelay/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
