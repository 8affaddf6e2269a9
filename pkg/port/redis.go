package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nobletooth/skipmap/pkg/scan"
	"github.com/nobletooth/skipmap/pkg/store"
	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection after writing if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeBulk       *string  // Writes a bulk string if set.
	writeArray      []string // Writes a multi-bulk reply if set.
	writeString     string   // Writes a simple string otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(s string) redisOutput {
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(items []string) redisOutput {
	if items == nil {
		items = []string{} // An empty multi-bulk reply, never a nil one.
	}
	return redisOutput{writeArray: items}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

// write flushes the output to the connection in Redis protocol terms.
func (out redisOutput) write(conn redcon.Conn) {
	switch {
	case out.err != nil:
		conn.WriteError(*out.err)
	case out.writeNil:
		conn.WriteNull()
	case out.writeInt != nil:
		conn.WriteInt(*out.writeInt)
	case out.writeBulk != nil:
		conn.WriteBulkString(*out.writeBulk)
	case out.writeArray != nil:
		conn.WriteArray(len(out.writeArray))
		for _, item := range out.writeArray {
			conn.WriteBulkString(item)
		}
	default:
		conn.WriteString(out.writeString)
	}
	if out.closeConnection {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close connection.", "error", err)
		}
	}
}

type redisHandler struct { // Implements the redcon handler callback.
	store store.KeyValueStore
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(kv store.KeyValueStore) (*redisHandler, error) {
	if kv == nil {
		return nil, errors.New("expected a non-nil store")
	}
	return &redisHandler{store: kv}, nil
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	switch strings.ToUpper(cmd.command) {
	case "PING":
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "SET":
		if len(cmd.args) != 2 {
			return writeRedisError(errors.New("wrong number of arguments for 'SET' command"))
		}
		key, value := cmd.args[0], cmd.args[1]
		if err := rh.store.Set(key, value); err != nil {
			return writeRedisError(err)
		}
		return writeRedisString(RedisOk)
	case "GET":
		if len(cmd.args) != 1 {
			return writeRedisError(errors.New("wrong number of arguments for 'GET' command"))
		}
		key := cmd.args[0]
		if value, err := rh.store.Get(key); errors.Is(err, store.ErrKeyNotFound) {
			return writeRedisNil()
		} else if err != nil {
			return writeRedisError(err)
		} else {
			return writeRedisBulk(value)
		}
	case "DEL":
		if len(cmd.args) < 1 {
			return writeRedisError(errors.New("wrong number of arguments for 'DEL' command"))
		}
		deletedCount := 0
		for _, key := range cmd.args {
			deletedCount += rh.store.Delete(key)
		}
		return writeRedisInt(deletedCount)
	case "EXISTS":
		if len(cmd.args) < 1 {
			return writeRedisError(errors.New("wrong number of arguments for 'EXISTS' command"))
		}
		existsCount := 0
		for _, key := range cmd.args {
			if rh.store.Exists(key) {
				existsCount++
			}
		}
		return writeRedisInt(existsCount)
	case "DBSIZE":
		return writeRedisInt(rh.store.Len())
	case "FLUSHALL":
		rh.store.Clear()
		return writeRedisString(RedisOk)
	case "KEYS":
		if len(cmd.args) != 1 {
			return writeRedisError(errors.New("wrong number of arguments for 'KEYS' command"))
		}
		// The store scans in ascending key order, so the reply is sorted.
		keys := make([]string, 0)
		for pair := range scan.MatchGlob(cmd.args[0], rh.store.Scan()) {
			keys = append(keys, pair.Key)
		}
		return writeRedisArray(keys)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// RunRedisServer starts a Redis protocol server that serves the provided store.
func RunRedisServer(ctx context.Context, kv store.KeyValueStore) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(kv)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand.
			command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			redisHandler.handle(command).write(conn)
		},
		/*accept*/ func(conn redcon.Conn) bool {
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			// Nothing to clean up per connection.
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()

	select {
	case <-ctx.Done():
		serverErr := redisServer.Close()
		storeErr := kv.Close()
		if exitErr := errors.Join(serverErr, storeErr); exitErr != nil {
			return fmt.Errorf("failed to close the server: %w", exitErr)
		}
	case err := <-serverErrSignal:
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
