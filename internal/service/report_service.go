package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	apperrors "avodah/internal/errors"
	"avodah/internal/mailer"
)

// Report is a user submitted error report.
type Report struct {
	Name        string
	Email       string
	Description string
}

// ReportService forwards error reports to the maintainers by email.
type ReportService interface {
	Send(ctx context.Context, r Report) error
}

type reportService struct {
	mailer mailer.Mailer
	from   mailer.Address
	to     []mailer.Address
}

// NewReportService creates a report service that mails from -> to.
func NewReportService(m mailer.Mailer, from, to string) ReportService {
	var recipients []mailer.Address
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, mailer.Address{Email: addr})
		}
	}
	return &reportService{
		mailer: m,
		from:   mailer.Address{Email: from, Name: "Avodah | Error Report"},
		to:     recipients,
	}
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<div><h1>Novo Relatório de Erro</h1>` +
	`<div><span>Nome:</span> {{.Name}}</div>` +
	`<div><span>Email:</span> {{.Email}}</div>` +
	`<div><span>Descrição:</span><br><p>{{range $i, $l := lines .Description}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p></div></div>`))

func (s *reportService) Send(ctx context.Context, r Report) error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Description) == "" {
		return apperrors.ErrMissingFields
	}
	var html strings.Builder
	if err := reportTemplate.Execute(&html, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	msg := mailer.Message{
		From:    s.from,
		To:      s.to,
		Subject: "Novo Relatório de Erro!",
		HTML:    html.String(),
		Text:    fmt.Sprintf("Name: %s\nEmail: %s\nDescription: %s", r.Name, r.Email, r.Description),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
