package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")

	// Архив по данному турниру ещё не создан или уже удалён.
	ErrArchiveNotFound = errors.New("archive not found")

	// Обновление глобального индекса исчерпало бюджет попыток. Сам
	// объект снапшота при этом мог быть успешно записан — вызывающие
	// обязаны различать «заархивировано» и «проиндексировано».
	ErrIndexUpdateFailed = errors.New("archive index update failed")

	// Удаление основной строки турнира не удалось после каскада;
	// зависимые данные при этом уже удалены (частичное удаление).
	ErrDeletionFailed = errors.New("tournament deletion failed")

	ErrArchivedByRequired = errors.New("archived_by is required")
)
