package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

var (
	errInvalidID      = httperr.Validation("invalid_id", "id must be a positive integer")
	errInvalidStaffID = httperr.Validation("invalid_staff_id", "staff_id must be \"any\" or a positive integer")
	errInvalidIDList  = httperr.Validation("invalid_id_list", "ids must be a comma separated list of positive integers")
	errInvalidRequest = httperr.Validation("invalid_request", "request body is invalid")
)

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, ok := parseID(c.Param(name))
	if !ok {
		return 0, errInvalidID
	}
	return id, nil
}

// staffParam reads "any" (or nothing) as nil.
func staffParam(s string) (*uint, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "any") {
		return nil, nil
	}
	id, ok := parseID(s)
	if !ok {
		return nil, errInvalidStaffID
	}
	return &id, nil
}

// idCounts parses "3,3,5" into ids in first-seen order with their repeat
// counts.
func idCounts(s string) ([]uint, map[uint]int, error) {
	counts := map[uint]int{}
	var order []uint
	if strings.TrimSpace(s) == "" {
		return order, counts, nil
	}
	for _, part := range strings.Split(s, ",") {
		id, ok := parseID(part)
		if !ok {
			return nil, nil, errInvalidIDList
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	return order, counts, nil
}

func menuLines(s string) ([]models.MenuLine, error) {
	order, counts, err := idCounts(s)
	if err != nil {
		return nil, err
	}
	out := make([]models.MenuLine, 0, len(order))
	for _, id := range order {
		out = append(out, models.MenuLine{MenuID: id, Quantity: counts[id]})
	}
	return out, nil
}

func optionLines(s string) ([]models.OptionLine, error) {
	order, counts, err := idCounts(s)
	if err != nil {
		return nil, err
	}
	out := make([]models.OptionLine, 0, len(order))
	for _, id := range order {
		out = append(out, models.OptionLine{OptionID: id, Quantity: counts[id]})
	}
	return out, nil
}
