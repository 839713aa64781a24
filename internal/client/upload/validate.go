package upload

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/common"
)

// Validate applies the relay's size and type limits locally so a file that
// would be refused never leaves the machine.
func Validate(data []byte) error {
	if len(data) == 0 {
		return common.ErrMissingUploadField
	}
	if int64(len(data)) > common.MaxUploadBytes {
		size, max := common.FormatOverLimit(int64(len(data)), common.MaxUploadBytes)
		return fmt.Errorf("%w: %s, maximum is %s", common.ErrFileTooLarge, size, max)
	}
	if _, ok := common.AcceptedUploadTypes[ContentType(data)]; !ok {
		return fmt.Errorf("%w: %s", common.ErrUnsupportedFile, ContentType(data))
	}
	return nil
}

// ContentType sniffs data the way the relay does.
func ContentType(data []byte) string {
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return ct
}

// message renders a local validation error for the session snapshot.
func message(err error) string {
	msg := err.Error()
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return msg
}
