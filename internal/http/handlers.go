package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"budgetbook/internal/log"
	"budgetbook/internal/notify"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(categoriesJSON()).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseRefDate(r, s.now())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	d, err := s.svc.Insights.Dashboard(r.Context(), ref)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toDashboardJSON(d)).Write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseRefDate(r, s.now())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	rep, err := s.svc.Insights.Analytics(r.Context(), ref)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toAnalyticsJSON(rep)).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r, 0)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	items, err := s.svc.Expenses.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toExpenseList(items)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := ParseExpenseRequest(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	e, err := s.svc.Expenses.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+strconv.FormatInt(e.ID, 10)).
		Body(toExpenseJSON(e)).
		Write(w)
}

// handlePayNow blocks for the simulated payment delay.
func (s *Server) handlePayNow(w http.ResponseWriter, r *http.Request) {
	in, err := ParseExpenseRequest(r)
	if err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	e, err := s.svc.Payment.PayNow(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toExpenseJSON(e)).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toSettingsJSON(v)).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	in, err := ParseSettingsRequest(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	v, err := s.svc.Settings.Update(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(toSettingsJSON(v)).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := s.svc.Export.Export(r.Context())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("X-Expense-Count", strconv.Itoa(file.Count))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// handleImport accepts a multipart upload in the "file" field or a raw CSV
// body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	name := "upload.csv"
	var body io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, log.OpImport, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		defer f.Close()
		name, body = hdr.Filename, f
	}

	out, err := s.svc.Import.Import(r.Context(), name, body)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	NewJSONResponse().Body(toImportJSON(out)).Write(w)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	var items []notify.Notification
	if s.svc.History != nil {
		items = s.svc.History.Recent()
	}
	if items == nil {
		items = []notify.Notification{}
	}
	NewJSONResponse().Body(items).Write(w)
}
