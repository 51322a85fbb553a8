package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/checkins"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/friendships"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/messages"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/reactions"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Checkins(db dbx.DBTX) checkins.Repository
	Messages(db dbx.DBTX) messages.Repository
	Reactions(db dbx.DBTX) reactions.Repository
	Friendships(db dbx.DBTX) friendships.Repository
}
