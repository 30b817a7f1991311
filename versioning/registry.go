// Package versioning знает, какая версия архивного UI действовала в
// какой момент времени. Снапшоты без явного тега версии (созданные до
// появления тегирования) получают версию выводом по дате архивации, без
// миграции сохранённых объектов.
package versioning

import "time"

// Release связывает тег версии с датой её выката.
type Release struct {
	Tag        string
	ReleasedAt time.Time
}

// DefaultVersion — тег для снапшотов старше всех известных релизов и для
// снапшотов без даты архивации.
const DefaultVersion = "v1"

// releases отсортированы по дате выката по убыванию. Новый релиз
// добавляется в начало списка.
var releases = []Release{
	{Tag: "v2", ReleasedAt: time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)},
	{Tag: "v1", ReleasedAt: time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)},
}

// CurrentVersion возвращает тег, которым помечаются новые снапшоты.
func CurrentVersion() string {
	return releases[0].Tag
}

// Releases возвращает копию списка известных релизов.
func Releases() []Release {
	out := make([]Release, len(releases))
	copy(out, releases)
	return out
}

// InferVersion возвращает тег первой версии, выкаченной не позже
// archivedAt. Для nil или нулевого времени, а также для дат раньше всех
// релизов возвращается DefaultVersion.
func InferVersion(archivedAt *time.Time) string {
	if archivedAt == nil || archivedAt.IsZero() {
		return DefaultVersion
	}
	for _, r := range releases {
		if !r.ReleasedAt.After(*archivedAt) {
			return r.Tag
		}
	}
	return DefaultVersion
}
