package transferfee

import (
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// componentLogger returns gnark's process logger tagged with this package. It is
// looked up per call so that logger.Set in the binary takes effect.
func componentLogger() zerolog.Logger {
	return logger.Logger().With().Str("component", "transferfee").Logger()
}
