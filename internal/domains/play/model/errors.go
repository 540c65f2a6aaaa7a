package model

import "bgpiesa-backend/internal/shared/apperror"

var ErrPlayNotFound = apperror.New(
	apperror.KindNotFound,
	"PLAY_NOT_FOUND",
	"Пиесата не е намерена.",
)

var ErrImageNotFound = apperror.New(
	apperror.KindNotFound,
	"IMAGE_NOT_FOUND",
	"Изображението не е намерено.",
)

var ErrFileNotFound = apperror.New(
	apperror.KindNotFound,
	"FILE_NOT_FOUND",
	"Файлът не е намерен.",
)

var ErrScriptMissing = apperror.New(
	apperror.KindNotFound,
	"SCRIPT_NOT_UPLOADED",
	"Няма качен сценарий.",
)
