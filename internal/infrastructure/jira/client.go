// Package jira implementa el adaptador de lectura contra el API REST de
// Jira. Normaliza las rarezas del payload (horas en segundos o en campo
// custom, labels como string o como array) a snapshots limpios; la
// clasificación de facturabilidad no ocurre aquí.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AymanElMikh/bmw/internal/application/tickets"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/pkg/config"
)

var _ tickets.TicketSource = (*Client)(nil)

const (
	searchPath  = "/rest/api/2/search"
	pageSize    = 100
	maxResults  = 1000
	secondsHour = 3600
)

// Client cliente REST de Jira con token de servicio.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient construye el cliente desde la configuración.
func NewClient(cfg config.JiraConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchTickets consulta los issues resueltos del proyecto en el rango y los
// devuelve como snapshots normalizados. Pagina hasta agotar resultados (con
// tope defensivo).
func (c *Client) FetchTickets(ctx context.Context, q tickets.SourceQuery) ([]*entity.Ticket, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("jira: sincronización deshabilitada (JIRA_BASE_URL vacío)")
	}

	var result []*entity.Ticket
	for startAt := 0; startAt < maxResults; startAt += pageSize {
		page, total, err := c.searchPage(ctx, q, startAt)
		if err != nil {
			return nil, err
		}
		result = append(result, page...)
		if startAt+pageSize >= total {
			break
		}
	}
	return result, nil
}

func (c *Client) searchPage(ctx context.Context, q tickets.SourceQuery, startAt int) ([]*entity.Ticket, int, error) {
	params := url.Values{}
	params.Set("jql", buildJQL(q))
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("fields", "summary,description,status,labels,assignee,resolutiondate,timespent,customfield_10050")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("jira: crear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("jira: ejecutar búsqueda: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("jira: búsqueda devolvió %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("jira: decodificar respuesta: %w", err)
	}

	page := make([]*entity.Ticket, 0, len(sr.Issues))
	now := time.Now().UTC()
	for _, issue := range sr.Issues {
		page = append(page, issue.toTicket(now))
	}
	return page, sr.Total, nil
}

// buildJQL arma la consulta JQL desde los filtros del caso de uso.
func buildJQL(q tickets.SourceQuery) string {
	clauses := []string{
		fmt.Sprintf("project = %s", q.ProjectKey),
		fmt.Sprintf("status = %q", jiraStatus(q.Status)),
		fmt.Sprintf("resolved >= %q", q.From.Format("2006-01-02")),
		fmt.Sprintf("resolved <= %q", q.To.Format("2006-01-02")),
	}
	if q.Label != "" {
		clauses = append(clauses, fmt.Sprintf("labels = %q", q.Label))
	}
	return strings.Join(clauses, " AND ") + " ORDER BY key ASC"
}

// jiraStatus traduce el estado interno al nombre de estado de Jira.
func jiraStatus(status string) string {
	switch status {
	case entity.TicketStatusClosed:
		return "Done"
	case entity.TicketStatusInProgress:
		return "In Progress"
	case entity.TicketStatusOpen:
		return "To Do"
	default:
		return status
	}
}

// ── Payload ──────────────────────────────────────────────────────────────────

type searchResponse struct {
	Total  int     `json:"total"`
	Issues []issue `json:"issues"`
}

type issue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary        string         `json:"summary"`
	Description    string         `json:"description"`
	Status         statusField    `json:"status"`
	Labels         labelList      `json:"labels"`
	Assignee       *assigneeField `json:"assignee"`
	ResolutionDate string         `json:"resolutiondate"`
	// Horas: timespent viene en segundos; algunas instancias las llevan en
	// un campo custom decimal. Gana el custom si está presente.
	TimeSpent   *int64       `json:"timespent"`
	CustomHours *hoursNumber `json:"customfield_10050"`
}

type statusField struct {
	Name string `json:"name"`
}

type assigneeField struct {
	DisplayName string `json:"displayName"`
}

// labelList acepta tanto un array JSON como un string con labels separados
// por coma (payloads de instancias viejas).
type labelList []string

func (l *labelList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("labels ni array ni string: %s", string(data))
	}
	if s == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*l = out
	return nil
}

// hoursNumber acepta número JSON o string numérico.
type hoursNumber struct {
	value decimal.Decimal
}

func (h *hoursNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("horas inválidas %q: %w", s, err)
	}
	h.value = d
	return nil
}

// toTicket normaliza el issue a snapshot de dominio.
func (i issue) toTicket(now time.Time) *entity.Ticket {
	t := &entity.Ticket{
		TicketID:    i.Key,
		Summary:     i.Fields.Summary,
		Description: i.Fields.Description,
		Status:      normalizeStatus(i.Fields.Status.Name),
		Labels:      i.Fields.Labels,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if i.Fields.Assignee != nil {
		t.Assignee = i.Fields.Assignee.DisplayName
	}
	if i.Fields.CustomHours != nil {
		t.HoursWorked = i.Fields.CustomHours.value
	} else if i.Fields.TimeSpent != nil {
		t.HoursWorked = decimal.NewFromInt(*i.Fields.TimeSpent).
			Div(decimal.NewFromInt(secondsHour)).Round(2)
	}
	if i.Fields.ResolutionDate != "" {
		for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339} {
			if ts, err := time.Parse(layout, i.Fields.ResolutionDate); err == nil {
				utc := ts.UTC()
				t.ResolvedAt = &utc
				break
			}
		}
	}
	return t
}

// normalizeStatus mapea los nombres de estado de Jira a los internos.
func normalizeStatus(name string) string {
	switch strings.ToLower(name) {
	case "done", "closed", "resolved":
		return entity.TicketStatusClosed
	case "in progress", "in review":
		return entity.TicketStatusInProgress
	case "cancelled", "canceled", "won't do":
		return entity.TicketStatusCancelled
	default:
		return entity.TicketStatusOpen
	}
}
