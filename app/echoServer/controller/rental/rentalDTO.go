package rental

type RequestRentalReq struct {
	StockID int64  `json:"stockId" validate:"required,gt=0"`
	Note    string `json:"note"`
}

type ApproveRentalReq struct {
	RequestID int64  `json:"requestId" validate:"required,gt=0"`
	StartAt   string `json:"startAt" validate:"required"`
	EndAt     string `json:"endAt" validate:"required"`
}

type DismissRentalReq struct {
	RequestID int64 `json:"requestId" validate:"required,gt=0"`
}

type CompleteRentalReq struct {
	RentalID int64 `json:"rentalId" validate:"required,gt=0"`
}
