package ledger

import (
	"strings"

	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
)

func httperrIs(err error, code string) bool {
	return httperr.IsBusiness(err, code)
}

func lower(s string) string {
	return strings.ToLower(s)
}
