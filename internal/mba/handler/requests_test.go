package handler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RequestsSuite struct {
	suite.Suite
}

func TestRequestsSuite(t *testing.T) {
	suite.Run(t, new(RequestsSuite))
}

func (s *RequestsSuite) TestCreateMBARequest() {
	valid := func() *createMBARequest {
		return &createMBARequest{
			ClientID:  "550e8400-e29b-41d4-a716-446655440000",
			Name:      "  Summer campaign  ",
			Budget:    decimal.NewFromInt(50000),
			Currency:  "eur",
			StartDate: "2025-06-01",
			EndDate:   "2025-08-31",
		}
	}

	s.Run("normalize trims and uppercases", func() {
		req := valid()
		req.Normalize()
		s.Equal("Summer campaign", req.Name)
		s.Equal("EUR", req.Currency)
		s.NoError(req.Validate())
	})

	s.Run("missing client_id rejected", func() {
		req := valid()
		req.ClientID = ""
		req.Normalize()
		s.Error(req.Validate())
	})

	s.Run("non-positive budget rejected", func() {
		req := valid()
		req.Budget = decimal.Zero
		req.Normalize()
		s.Error(req.Validate())
	})
}

func (s *RequestsSuite) TestUpsertSpendRequest() {
	req := &upsertSpendRequest{
		Platform: " google_ads ",
		Period:   "2025-06",
		Amount:   decimal.NewFromInt(100),
	}
	req.Normalize()
	s.Equal("GOOGLE_ADS", req.Platform)
	s.NoError(req.Validate())

	req.Amount = decimal.NewFromInt(-1)
	s.Error(req.Validate())
}

func (s *RequestsSuite) TestCreateInvoiceRequestDefaultsType() {
	req := &createInvoiceRequest{
		Vendor:      "Google",
		Number:      "INV-1",
		InvoiceDate: "2025-06-01",
		TotalAmount: decimal.NewFromInt(1000),
		Currency:    "eur",
	}
	req.Normalize()
	s.Equal("INVOICE", req.Type)
	s.Equal("EUR", req.Currency)
	s.NoError(req.Validate())

	req.Allocations = []allocationRequest{{MBAID: "", Amount: decimal.NewFromInt(10)}}
	s.Error(req.Validate(), "allocation without mba_id rejected")
}

func (s *RequestsSuite) TestPaymentRequestsRequireDateWhenPaid() {
	s.Error((&updatePaymentRequest{Paid: true}).Validate())
	date := "2025-07-01"
	s.NoError((&updatePaymentRequest{Paid: true, PaidDate: &date}).Validate())
	s.NoError((&updatePaymentRequest{Paid: false}).Validate())

	s.Error((&setPaidRequest{Paid: true}).Validate())
	s.NoError((&setPaidRequest{Paid: true, PaidDate: &date}).Validate())
}

func (s *RequestsSuite) TestParsePeriodAcceptsMonthAndDate() {
	got, err := parsePeriod("2025-06")
	s.Require().NoError(err)
	s.Equal(time.June, got.Month())

	got, err = parsePeriod("2025-06-17")
	s.Require().NoError(err)
	s.Equal(17, got.Day())

	_, err = parsePeriod("June 2025")
	s.Error(err)
}
