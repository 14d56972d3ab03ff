package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

const dateLayout = "2006-01-02"

// parseQuery reads project_id, manager_id, date_from and date_to.
func parseQuery(r *http.Request) (model.CallQuery, error) {
	v := r.URL.Query()
	var (
		q   model.CallQuery
		err error
	)
	if q.ProjectID, err = optionalID(v.Get("project_id"), "project_id"); err != nil {
		return q, err
	}
	if q.ManagerID, err = optionalID(v.Get("manager_id"), "manager_id"); err != nil {
		return q, err
	}
	if q.Range.From, err = optionalDate(v.Get("date_from"), "date_from"); err != nil {
		return q, err
	}
	if q.Range.To, err = optionalDate(v.Get("date_to"), "date_to"); err != nil {
		return q, err
	}
	if !q.Range.From.IsZero() && !q.Range.To.IsZero() && q.Range.To.Before(q.Range.From) {
		return q, errors.New("date_to is before date_from")
	}
	return q, nil
}

func optionalID(s, name string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}

func optionalDate(s, name string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q; want YYYY-MM-DD", name, s)
	}
	return t, nil
}

func optionalInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

// pathID reads the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	s := r.PathValue("id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid manager id %q", s)
	}
	return id, nil
}

// idList parses a comma-separated id list, dropping duplicates.
func idList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := lo.Filter(strings.Split(s, ","), func(p string, _ int) bool { return strings.TrimSpace(p) != "" })
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := optionalID(strings.TrimSpace(p), "ids")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}
