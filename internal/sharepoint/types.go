package sharepoint

import "github.com/preston-bernstein/games-list-service/internal/domain/games"

type collectionResponse struct {
	Value []games.Game `json:"value"`
}

type entityTypeResponse struct {
	ListItemEntityTypeFullName string `json:"ListItemEntityTypeFullName"`
}
