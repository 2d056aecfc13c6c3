package catalogue

// DefaultTitleColumn is the consolidated title column of the merged tables.
const DefaultTitleColumn = "title"

var defaultColumns = map[Domain][]string{
	Anime: {
		"synopsis",
		"Synopsis anime_dataset_2023",
		"Synopsis animes dataset",
		"Synopsis anime_270 Dataset",
		"Synopsis Anime-2022 Dataset",
		"Synopsis anime4500 Dataset",
		"Synopsis wykonos Dataset",
		"Synopsis Anime_data Dataset",
		"Synopsis anime2 Dataset",
		"Synopsis mal_anime Dataset",
	},
	Manga: {
		"synopsis",
		"Synopsis jikan Dataset",
		"Synopsis data Dataset",
	},
}

// DefaultSynopsisColumns returns the synopsis columns of the merged dataset for a domain.
// Unknown domains have no defaults.
func DefaultSynopsisColumns(d Domain) []string {
	cols := defaultColumns[d]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// DefaultTableKey returns the object key of the merged table for a domain.
func DefaultTableKey(d Domain) string {
	return "merged_" + string(d) + "_dataset.csv"
}
