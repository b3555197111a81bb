package fixturecast

/**
* Fixturecast predicts home win / draw / away win for league football fixtures.
* - Team statistics from finished matches (recent form, goal averages, points percentage)
* - Fixed order feature vectors with standard-score scaling
* - No-lookahead training set assembly
* - Class weighted random forest with held out and cross validated evaluation
 */

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/richard-senior/fixturecast/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger is the diagnostic sink injected into components.
// *logger.Logger satisfies it.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

var _ Logger = (*logger.Logger)(nil)

// orDiscard substitutes a silent logger for nil
func orDiscard(l Logger) Logger {
	if l == nil {
		return logger.Discard()
	}
	return l
}
