package usecase

import (
	"browser-automator/internal/entity"
	"browser-automator/pkg/apperr"
	"time"
)

// Assembler builds the response envelope. now is swappable for tests.
type Assembler struct {
	now func() time.Time
}

func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble builds the success envelope, or the failure envelope when err is set. A failure
// envelope carries only the system error line and never scraped data or a summary.
func (a *Assembler) Assemble(requestID string, log *entity.ExecutionLog, data entity.ScrapedData, summary string, started time.Time, err error) *entity.ResultEnvelope {
	env := &entity.ResultEnvelope{
		RequestID:     requestID,
		ExecutionTime: a.elapsed(started),
	}

	if err != nil {
		env.Success = false
		env.Error = apperr.Cause(err).Error()
		env.Code = apperr.CodeOf(err)
		env.Results = []string{entity.SystemError(err).String()}

		return env
	}

	if data == nil {
		data = make(entity.ScrapedData)
	}

	env.Success = true
	env.Results = log.Lines()
	env.ScrapedData = data
	env.Summary = summary

	return env
}

func (a *Assembler) elapsed(started time.Time) int64 {
	ms := a.now().Sub(started).Milliseconds()
	if ms < 0 {
		return 0
	}

	return ms
}
