package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"strappon/internal/domain"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

// DocsService renders ride receipts for passengers and reimbursement
// statements for drivers as PDF.
type DocsService struct {
	Requests        repositories.DriveRequestRepository
	Drivers         repositories.DriverRepository
	Passengers      repositories.PassengerRepository
	Payments        repositories.PaymentRepository
	Now             domain.Clock
	RequestID       string
	ReceiptLoader   func(ctx context.Context, callerID, driveRequestID string) (receiptData, error)
	StatementLoader func(ctx context.Context, callerID string) (statementData, error)
}

type receiptData struct {
	DriveRequestID string
	PassengerName  string
	DriverName     string
	CarDescription string
	LicensePlate   string
	Origin         string
	Destination    string
	Distance       float64
	Seats          int
	RideDate       time.Time
	BonusCredits   int64
	CashCredits    int64
}

func (d receiptData) Total() int64 { return d.BonusCredits + d.CashCredits }

type statementLine struct {
	Date           time.Time
	DriveRequestID string
	Credits        int64
}

type statementData struct {
	DriverName   string
	LicensePlate string
	Lines        []statementLine
}

func (d statementData) Total() int64 {
	var sum int64
	for _, l := range d.Lines {
		sum += l.Credits
	}
	return sum
}

func (s DocsService) RideReceipt(ctx context.Context, callerID, driveRequestID string) ([]byte, string, error) {
	load := s.loadReceipt
	if s.ReceiptLoader != nil {
		load = s.ReceiptLoader
	}
	data, err := load(ctx, callerID, driveRequestID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "ride_receipt", "drive_request_id="+driveRequestID)
	return buildReceiptPDF(data, nowOf(s.Now))
}

func (s DocsService) DriverStatement(ctx context.Context, callerID string) ([]byte, string, error) {
	load := s.loadStatement
	if s.StatementLoader != nil {
		load = s.StatementLoader
	}
	data, err := load(ctx, callerID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "driver_statement", "user_id="+callerID)
	return buildStatementPDF(data, nowOf(s.Now))
}

func (s DocsService) loadReceipt(ctx context.Context, callerID, driveRequestID string) (receiptData, error) {
	dr, err := s.Requests.GetByID(ctx, driveRequestID)
	if err != nil {
		return receiptData{}, err
	}
	passenger, err := s.Passengers.GetByID(ctx, dr.PassengerID)
	if err != nil {
		return receiptData{}, err
	}
	if passenger.UserID != callerID {
		return receiptData{}, domain.ForbiddenError{UserID: callerID, Resource: "drive request " + dr.ID}
	}
	if !dr.Accepted || dr.Cancelled || dr.Active {
		return receiptData{}, domain.ValidationError{Field: "drive_request_id", Msg: "ride not completed"}
	}
	driver, err := s.Drivers.GetByID(ctx, dr.DriverID)
	if err != nil {
		return receiptData{}, err
	}
	payments, err := s.Payments.ListByDriveRequest(ctx, dr.ID)
	if err != nil {
		return receiptData{}, err
	}

	out := receiptData{
		DriveRequestID: dr.ID,
		CarDescription: strings.TrimSpace(driver.CarColor + " " + driver.CarMake + " " + driver.CarModel),
		LicensePlate:   driver.LicensePlate,
		Origin:         passenger.Origin,
		Destination:    passenger.Destination,
		Distance:       passenger.Distance,
		Seats:          passenger.Seats,
		RideDate:       dr.UpdatedAt,
	}
	if passenger.User != nil {
		out.PassengerName = passenger.User.Name
	}
	if driver.User != nil {
		out.DriverName = driver.User.Name
	}
	for _, p := range payments {
		if p.PayerUserID != passenger.UserID {
			continue
		}
		if p.PromoCodeID != "" {
			out.BonusCredits += p.Credits
		} else {
			out.CashCredits += p.Credits
		}
	}
	return out, nil
}

func (s DocsService) loadStatement(ctx context.Context, callerID string) (statementData, error) {
	driver, err := s.Drivers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return statementData{}, err
	}
	payments, err := s.Payments.ListByUser(ctx, callerID, domain.Page{Limit: 100})
	if err != nil {
		return statementData{}, err
	}
	out := statementData{LicensePlate: driver.LicensePlate}
	if driver.User != nil {
		out.DriverName = driver.User.Name
	}
	for _, p := range payments {
		if p.PayeeUserID != callerID || p.DriveRequestID == "" {
			continue
		}
		out.Lines = append(out.Lines, statementLine{Date: p.CreatedAt, DriveRequestID: p.DriveRequestID, Credits: p.Credits})
	}
	return out, nil
}

func buildReceiptPDF(d receiptData, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ride receipt", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RIDE RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt    : RCP-%s", shortID(d.DriveRequestID)),
		fmt.Sprintf("Issued     : %s", utils.FormatDateTime(now)),
		fmt.Sprintf("Passenger  : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Driver     : %s", safe(d.DriverName, "-")),
		fmt.Sprintf("Car        : %s %s", safe(d.CarDescription, "-"), d.LicensePlate),
		fmt.Sprintf("Route      : %s -> %s", safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Date       : %s", utils.FormatDate(d.RideDate)),
		fmt.Sprintf("Distance   : %.1f km", d.Distance),
		fmt.Sprintf("Seats      : %d", d.Seats),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Paid with:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr("Bonus credits : "+utils.FormatCredits(d.BonusCredits)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Balance       : "+utils.FormatCredits(d.CashCredits)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Total: "+utils.FormatCredits(d.Total())))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Bonus credits come from promo codes and are used before your balance.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s_%s.pdf", shortID(d.DriveRequestID), safeFilenamePart(d.PassengerName))
	return buf.Bytes(), filename, nil
}

func buildStatementPDF(d statementData, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Driver statement", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DRIVER STATEMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Driver : "+safe(d.DriverName, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Plate  : "+safe(d.LicensePlate, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued : "+utils.FormatDateTime(now))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 7, "Date", "B", 0, "", false, 0, "")
	pdf.CellFormat(90, 7, "Ride", "B", 0, "", false, 0, "")
	pdf.CellFormat(40, 7, "Reimbursed", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if len(d.Lines) == 0 {
		pdf.Cell(0, 7, "No reimbursed rides yet.")
		pdf.Ln(7)
	}
	for _, l := range d.Lines {
		pdf.CellFormat(40, 7, utils.FormatDate(l.Date), "", 0, "", false, 0, "")
		pdf.CellFormat(90, 7, shortID(l.DriveRequestID), "", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, tr(utils.FormatCredits(l.Credits)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Total: "+utils.FormatCredits(d.Total())))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("STATEMENT_%s_%s.pdf", safeFilenamePart(d.DriverName), now.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(safe(id, "NA"))
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
