package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/CristiGvl/picoCPUInfo/cpuinfo"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

const queryTimeout = 10 * time.Second

// coresResponse is the body of GET /api/cpu/cores.
type coresResponse struct {
	Kind          topology.Kind           `json:"kind"`
	LogicalCores  int                     `json:"logical_cores"`
	PhysicalCores int                     `json:"physical_cores"`
	Groups        []cpuinfo.Group         `json:"groups"`
	Cores         []topology.PhysicalCore `json:"cores"`
}

func (s *Server) query() (cpuinfo.CPUInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return cpuinfo.QueryFrom(ctx, s.source, s.options)
}

// CPU endpoint
func (s *Server) getCPU(c *fiber.Ctx) error {
	info, err := s.query()
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(info)
}

// Physical cores endpoint
func (s *Server) getCores(c *fiber.Ctx) error {
	info, err := s.query()
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(coresResponse{
		Kind:          info.Topology.Kind,
		LogicalCores:  info.LogicalCores,
		PhysicalCores: info.PhysicalCores,
		Groups:        info.Topology.Groups,
		Cores:         info.Cores,
	})
}

// sendError maps a query failure to a status code. Missing data sources
// are reported as 503 since they depend on the host, not the request.
func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, cpuinfo.ErrAcquisition) {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
