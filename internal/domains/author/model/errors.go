package model

import "bgpiesa-backend/internal/shared/apperror"

var ErrAuthorNotFound = apperror.New(
	apperror.KindNotFound,
	"AUTHOR_NOT_FOUND",
	"Авторът не е намерен.",
)

var ErrAuthorHasPlays = apperror.New(
	apperror.KindConflict,
	"AUTHOR_HAS_PLAYS",
	"Изтрийте или преместете пиесите на автора преди тази операция.",
)
