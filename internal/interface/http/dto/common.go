package dto

import (
	"bytes"
	"encoding/json"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

// MediaPrefix URL, под которым раздаются загруженные файлы.
const MediaPrefix = "/media"

// Decimal принимает цену и числом, и строкой: 100, 100.5, 1e2, "100.00".
// Экспоненту допускает только JSON-число, строка должна быть обычной десятичной записью.
type Decimal string

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	raw := n.String()
	if strings.ContainsAny(raw, "eE") {
		f, err := n.Float64()
		if err != nil {
			return err
		}
		raw = strconv.FormatFloat(f, 'f', -1, 64)
	}
	*d = Decimal(raw)
	return nil
}

func (d Decimal) Price() (valueobject.Price, error) {
	return valueobject.ParsePrice(string(d))
}

func mediaURL(p string) *string {
	if p == "" {
		return nil
	}
	u := path.Join(MediaPrefix, p)
	return &u
}

func optionalTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}

type SkillResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func ToSkillResponses(skills []entity.Skill) []SkillResponse {
	out := make([]SkillResponse, len(skills))
	for i, s := range skills {
		out[i] = SkillResponse{ID: s.ID.String(), Name: s.Name}
	}
	return out
}

// skillNames названия навыков, никогда не nil, чтобы в JSON был [].
func skillNames(skills []entity.Skill) []string {
	names := entity.SkillNames(skills)
	if names == nil {
		return []string{}
	}
	return names
}
