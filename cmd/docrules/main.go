package main

import "log"

func main() {
	log.SetFlags(0)
	log.SetPrefix("docrules: ")
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
