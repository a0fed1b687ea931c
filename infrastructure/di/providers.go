package di

import (
	"context"
	"fmt"

	"castfeed-backend/application/commands"
	"castfeed-backend/application/commands/bus"
	appevents "castfeed-backend/application/events"
	"castfeed-backend/application/ports"
	"castfeed-backend/application/queries"
	querybus "castfeed-backend/application/queries/bus"
	queries_handlers "castfeed-backend/application/queries/handlers"
	"castfeed-backend/application/services"
	"castfeed-backend/domain/feed"
	"castfeed-backend/infrastructure/config"
	"castfeed-backend/infrastructure/media"
	"castfeed-backend/infrastructure/messaging/eventbridge"
	"castfeed-backend/infrastructure/messaging/inprocess"
	dynamopersistence "castfeed-backend/infrastructure/persistence/dynamodb"
	"castfeed-backend/infrastructure/persistence/memory"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// Repositories bundles the persistence layer behind one provider so the
// backend can switch between DynamoDB and in-memory with a config flag.
type Repositories struct {
	Contents      ports.ContentRepository
	Engagements   ports.EngagementRepository
	Comments      ports.CommentRepository
	Feeds         ports.FeedRepository
	Relationships ports.RelationshipRepository
}

// ProvideRepositories creates the repository set for the configured driver
func ProvideRepositories(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *Repositories {
	if cfg.PersistenceDriver == "memory" {
		return &Repositories{
			Contents:      memory.NewInMemoryContentRepository(),
			Engagements:   memory.NewInMemoryEngagementRepository(),
			Comments:      memory.NewInMemoryCommentRepository(),
			Feeds:         memory.NewInMemoryFeedRepository(),
			Relationships: memory.NewInMemoryRelationshipRepository(),
		}
	}

	return &Repositories{
		Contents:      dynamopersistence.NewContentRepository(client, cfg.DynamoDBTable, logger),
		Engagements:   dynamopersistence.NewEngagementRepository(client, cfg.DynamoDBTable, logger),
		Comments:      dynamopersistence.NewCommentRepository(client, cfg.DynamoDBTable, logger),
		Feeds:         dynamopersistence.NewFeedRepository(client, cfg.DynamoDBTable, logger),
		Relationships: dynamopersistence.NewRelationshipRepository(client, cfg.DynamoDBTable, logger),
	}
}

// ProvideEventBus creates the in-process event bus and hooks up its
// consumers: the feed listener always, the EventBridge forwarder when the
// deployment asks for it.
func ProvideEventBus(
	ebClient *awseventbridge.Client,
	repos *Repositories,
	materializer *services.FeedMaterializer,
	cfg *config.Config,
	logger *zap.Logger,
) ports.EventBus {
	eventBus := inprocess.NewEventBus(logger)

	listener := appevents.NewFeedListener(repos.Contents, materializer, logger)
	listener.Register(eventBus)

	if cfg.PublishToEventBridge {
		publisher := eventbridge.NewPublisher(ebClient, cfg.EventBusName, logger)
		forwarder := appevents.NewForwarder(publisher, logger)
		forwarder.Register(eventBus)
	}

	return eventBus
}

// ProvideMediaSigner creates the view-time media URL signer
func ProvideMediaSigner() ports.MediaSigner {
	return media.NewPassthroughSigner()
}

// ProvideFeedStrategy creates the timeline aggregation strategy
func ProvideFeedStrategy() feed.Strategy {
	return feed.NewCreateTimeStrategy()
}

// ProvideFeedMaterializer creates the feed materializer service
func ProvideFeedMaterializer(repos *Repositories, strategy feed.Strategy, logger *zap.Logger) *services.FeedMaterializer {
	return services.NewFeedMaterializer(repos.Feeds, repos.Relationships, strategy, logger)
}

// ProvideEngagementLedger creates the engagement ledger service
func ProvideEngagementLedger(repos *Repositories, eventBus ports.EventBus, logger *zap.Logger) *services.EngagementLedger {
	return services.NewEngagementLedger(repos.Contents, repos.Comments, repos.Engagements, eventBus, logger)
}

// ProvideCastResolver creates the recast/quote resolver service
func ProvideCastResolver(repos *Repositories, eventBus ports.EventBus, logger *zap.Logger) *services.CastResolver {
	return services.NewCastResolver(repos.Contents, repos.Engagements, eventBus, logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repos *Repositories,
	ledger *services.EngagementLedger,
	resolver *services.CastResolver,
	materializer *services.FeedMaterializer,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	// Register content lifecycle handlers
	createHandler := commands.NewCreateContentHandler(repos.Contents, eventBus, logger)
	commandBus.Register(commands.CreateContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createHandler.Handle(ctx, createCmd)
			return err
		},
	})

	updateHandler := commands.NewUpdateContentHandler(repos.Contents, eventBus, logger)
	commandBus.Register(commands.UpdateContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := updateHandler.Handle(ctx, updateCmd)
			return err
		},
	})

	deleteHandler := commands.NewDeleteContentHandler(resolver)
	commandBus.Register(commands.DeleteContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	})

	// Register recast/quote handlers
	deriveHandler := commands.NewDeriveContentHandler(resolver)
	commandBus.Register(commands.RecastContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			recastCmd, ok := cmd.(commands.RecastContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := deriveHandler.HandleRecast(ctx, recastCmd)
			return err
		},
	})
	commandBus.Register(commands.QuoteContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			quoteCmd, ok := cmd.(commands.QuoteContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := deriveHandler.HandleQuote(ctx, quoteCmd)
			return err
		},
	})

	// Register engagement handlers
	engageHandler := commands.NewEngageContentHandler(ledger)
	commandBus.Register(commands.LikeContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			likeCmd, ok := cmd.(commands.LikeContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return engageHandler.HandleLikeContent(ctx, likeCmd)
		},
	})
	commandBus.Register(commands.UnlikeContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			unlikeCmd, ok := cmd.(commands.UnlikeContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return engageHandler.HandleUnlikeContent(ctx, unlikeCmd)
		},
	})
	commandBus.Register(commands.LikeCommentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			likeCmd, ok := cmd.(commands.LikeCommentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return engageHandler.HandleLikeComment(ctx, likeCmd)
		},
	})
	commandBus.Register(commands.UnlikeCommentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			unlikeCmd, ok := cmd.(commands.UnlikeCommentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return engageHandler.HandleUnlikeComment(ctx, unlikeCmd)
		},
	})
	commandBus.Register(commands.ReconcileContentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			reconcileCmd, ok := cmd.(commands.ReconcileContentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return engageHandler.HandleReconcile(ctx, reconcileCmd)
		},
	})

	// Register comment handlers
	commentHandler := commands.NewCommentContentHandler(repos.Comments, repos.Contents, ledger, eventBus, logger)
	commandBus.Register(commands.CreateCommentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateCommentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := commentHandler.HandleCreate(ctx, createCmd)
			return err
		},
	})
	commandBus.Register(commands.ReplyCommentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			replyCmd, ok := cmd.(commands.ReplyCommentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := commentHandler.HandleReply(ctx, replyCmd)
			return err
		},
	})
	commandBus.Register(commands.UpdateCommentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateCommentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := commentHandler.HandleUpdate(ctx, updateCmd)
			return err
		},
	})
	commandBus.Register(commands.DeleteCommentCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteCommentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return commentHandler.HandleDelete(ctx, deleteCmd)
		},
	})

	// Register feed and follow graph handlers
	feedHandler := commands.NewFeedCommandHandler(materializer, repos.Relationships)
	commandBus.Register(commands.MarkFeedSeenCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			seenCmd, ok := cmd.(commands.MarkFeedSeenCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return feedHandler.HandleMarkSeen(ctx, seenCmd)
		},
	})
	commandBus.Register(commands.MarkFeedCalledCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			calledCmd, ok := cmd.(commands.MarkFeedCalledCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return feedHandler.HandleMarkCalled(ctx, calledCmd)
		},
	})
	commandBus.Register(commands.FollowCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			followCmd, ok := cmd.(commands.FollowCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return feedHandler.HandleFollow(ctx, followCmd)
		},
	})
	commandBus.Register(commands.UnfollowCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			unfollowCmd, ok := cmd.(commands.UnfollowCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return feedHandler.HandleUnfollow(ctx, unfollowCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repos *Repositories,
	materializer *services.FeedMaterializer,
	signer ports.MediaSigner,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	// Register GetContentQuery handler
	getContentHandler := queries_handlers.NewGetContentHandler(repos.Contents, signer, logger)
	queryBus.Register(queries.GetContentQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetContentQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getContentHandler.Handle(ctx, getQuery)
		},
	})

	// Register ListContentsByAuthorQuery handler
	listContentsHandler := queries_handlers.NewListContentsByAuthorHandler(repos.Contents, signer, logger)
	queryBus.Register(queries.ListContentsByAuthorQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListContentsByAuthorQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listContentsHandler.Handle(ctx, listQuery)
		},
	})

	// Register revision query handlers
	revisionsHandler := queries_handlers.NewRevisionsHandler(repos.Contents, logger)
	queryBus.Register(queries.ListRevisionsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListRevisionsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return revisionsHandler.HandleList(ctx, listQuery)
		},
	})
	queryBus.Register(queries.GetRevisionQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetRevisionQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return revisionsHandler.HandleGet(ctx, getQuery)
		},
	})

	// Register comment query handlers
	listCommentsHandler := queries_handlers.NewListCommentsHandler(repos.Comments, logger)
	queryBus.Register(queries.ListCommentsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListCommentsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listCommentsHandler.HandleList(ctx, listQuery)
		},
	})
	queryBus.Register(queries.ListRepliesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			repliesQuery, ok := query.(queries.ListRepliesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listCommentsHandler.HandleReplies(ctx, repliesQuery)
		},
	})

	// Register GetFeedQuery handler
	getFeedHandler := queries_handlers.NewGetFeedHandler(materializer, signer, logger)
	queryBus.Register(queries.GetFeedQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			feedQuery, ok := query.(queries.GetFeedQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getFeedHandler.Handle(ctx, feedQuery)
		},
	})

	return queryBus
}
