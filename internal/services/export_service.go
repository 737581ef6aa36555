package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"todoapi/internal/domain/models"
	"todoapi/internal/repositories"
	"todoapi/internal/utils"
)

// ExportService renders the caller's todo list as a PDF.
type ExportService struct {
	Todos     repositories.TodoRepository
	RequestID string
	Loader    func(ctx context.Context, ownerID int64) ([]models.Todo, error)
}

// TodoList builds the PDF for one owner and returns content plus filename.
func (s ExportService) TodoList(ctx context.Context, p models.Principal) ([]byte, string, error) {
	todos, err := s.load(ctx, p.UserID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "export", "todo_pdf", fmt.Sprintf("user_id=%d todos=%d", p.UserID, len(todos)))
	return buildTodoListPDF(p, todos)
}

func (s ExportService) load(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	if s.Loader != nil {
		return s.Loader(ctx, ownerID)
	}
	return s.Todos.ListByOwner(ctx, ownerID)
}

func buildTodoListPDF(p models.Principal, todos []models.Todo) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Todo List", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TODO LIST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Owner     : %s <%s>", p.Name, p.Email))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(12, 7, "Done")
	pdf.Cell(90, 7, "Title")
	pdf.Cell(20, 7, "Priority")
	pdf.Cell(0, 7, "Created")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, t := range todos {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		pdf.Cell(12, 7, mark)
		pdf.Cell(90, 7, truncate(t.Title, 48))
		pdf.Cell(20, 7, fmt.Sprintf("%d", t.Priority))
		pdf.Cell(0, 7, t.CreatedAt.Format("2006-01-02"))
		pdf.Ln(7)
	}

	if len(todos) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, "No todos yet.")
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TODOS_%d_%s.pdf", p.UserID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
