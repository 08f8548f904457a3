package analysisconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wonny/stocksignal/internal/contracts"
)

// Load reads stocks.yml, evaluators.yml and report.yml from dir.
// stocks.yml is required. The other two fall back to Defaults.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(dir string) (*Config, error) {
	cfg := Defaults()

	found, err := decodeFile(filepath.Join(dir, StocksFile), &cfg.Stocks)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s not found in %s", StocksFile, dir)
	}

	// 파일이 있으면 기본값 대신 파일 내용만 사용
	var evals Evaluators
	found, err = decodeFile(filepath.Join(dir, EvaluatorsFile), &evals)
	if err != nil {
		return nil, err
	}
	if found {
		cfg.Evaluators = evals
	}

	if _, err := decodeFile(filepath.Join(dir, ReportFile), &cfg.Report); err != nil {
		return nil, err
	}

	applyMarketDefaults(&cfg.Stocks)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes the three documents from memory (tests, embedded configs)
func Parse(stocks, evaluators, report []byte) (*Config, error) {
	cfg := Defaults()
	if err := decode(stocks, &cfg.Stocks); err != nil {
		return nil, fmt.Errorf("%s: %w", StocksFile, err)
	}
	if len(evaluators) > 0 {
		var evals Evaluators
		if err := decode(evaluators, &evals); err != nil {
			return nil, fmt.Errorf("%s: %w", EvaluatorsFile, err)
		}
		cfg.Evaluators = evals
	}
	if len(report) > 0 {
		if err := decode(report, &cfg.Report); err != nil {
			return nil, fmt.Errorf("%s: %w", ReportFile, err)
		}
	}
	applyMarketDefaults(&cfg.Stocks)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, out interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := decode(data, out); err != nil {
		return true, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func decode(data []byte, out interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	return dec.Decode(out)
}

// 시장 미지정 시 그룹 기본 시장 사용
func applyMarketDefaults(s *Stocks) {
	for i := range s.KR {
		if s.KR[i].Market == "" {
			s.KR[i].Market = contracts.MarketKRX
		}
	}
	for i := range s.US {
		if s.US[i].Market == "" {
			s.US[i].Market = contracts.MarketNASDAQ
		}
	}
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: encoding/json은 map 키를 정렬하므로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
