package rest

import (
	"github.com/eliotdl/yt-any/server/activity"
	"github.com/eliotdl/yt-any/server/broadcast"
	"github.com/eliotdl/yt-any/server/cookies"
	"github.com/eliotdl/yt-any/server/formats"
	"github.com/eliotdl/yt-any/server/internal/extractor"
	"github.com/eliotdl/yt-any/server/internal/queue"
	"github.com/eliotdl/yt-any/server/internal/runner"
	"github.com/eliotdl/yt-any/server/internal/session"
	"github.com/eliotdl/yt-any/server/platform"
)

type ContainerArgs struct {
	Registry    *platform.Registry
	Cookies     *cookies.Store
	Builder     *formats.Builder
	Extractor   *extractor.Extractor
	Sessions    *session.Store
	Runner      *runner.Runner
	MQ          *queue.MessageQueue
	Broadcaster *broadcast.Broadcaster
	Activity    *activity.Service
}
