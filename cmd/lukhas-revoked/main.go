// Command lukhas-revoked serves a key revocation list over gRPC for seal
// verifiers running online checks.
package main

import (
	"bufio"
	"flag"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"lukhas.dev/seal/revocation"
)

func main() {
	fs := flag.NewFlagSet("lukhas-revoked", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7711", "listen address")
	listFile := fs.String("revoked-file", "", "file with one revoked key id per line")
	_ = fs.Parse(os.Args[1:])

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var revoked []string
	if *listFile != "" {
		f, err := os.Open(*listFile)
		if err != nil {
			log.Fatal().Err(err).Msg("open revoked file")
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if kid := strings.TrimSpace(sc.Text()); kid != "" {
				revoked = append(revoked, kid)
			}
		}
		_ = f.Close()
		if err := sc.Err(); err != nil {
			log.Fatal().Err(err).Msg("read revoked file")
		}
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	defer lis.Close()

	s := grpc.NewServer()
	revocation.RegisterRevocationServer(s, revocation.NewListServer(revoked...))

	log.Info().Str("addr", lis.Addr().String()).Int("revoked", len(revoked)).Msg("lukhas-revoked listening")
	if err := s.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
