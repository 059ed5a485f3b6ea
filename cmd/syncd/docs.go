package main

//go:generate swag init -g cmd/syncd/main.go -o docs

// @title           Ueeshop Order Sync API
// @version         0.1.0
// @description     Incremental order sync, anchor attribution, and pipeline monitoring.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
