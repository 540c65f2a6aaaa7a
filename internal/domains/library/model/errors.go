package model

import "bgpiesa-backend/internal/shared/apperror"

var ErrPieceNotFound = apperror.New(
	apperror.KindNotFound,
	"PIECE_NOT_FOUND",
	"Литературното произведение не е намерено.",
)

var ErrPDFMissing = apperror.New(
	apperror.KindNotFound,
	"PDF_NOT_UPLOADED",
	"Няма качен PDF.",
)
