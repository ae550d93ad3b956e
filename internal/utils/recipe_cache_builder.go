package utils

import "strconv"

func BuildRecipesListCacheKey(limit int, cursor string) string {
	return "recipes:list:v1:limit=" + strconv.Itoa(limit) +
		":cursor=" + cursor
}
